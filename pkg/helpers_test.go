package pkg

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"perceptron/pkg/model"
)

// separableInstances returns instances near (0,0) labeled A and near (10,10) labeled B.
func separableInstances(n int, rnd *rand.Rand) []model.Instance {
	instances := make([]model.Instance, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			instances = append(instances, model.NewInstance([]float64{rnd.Float64(), rnd.Float64()}, "A"))
		} else {
			instances = append(instances, model.NewInstance([]float64{10 - rnd.Float64(), 10 - rnd.Float64()}, "B"))
		}
	}
	return instances
}

func separableCSV(n int, seed int64) string {
	var sb strings.Builder
	sb.WriteString("x,y,class\n")
	for _, inst := range separableInstances(n, rand.New(rand.NewSource(seed))) {
		fmt.Fprintf(&sb, "%g,%g,%s\n", inst.Feature(0), inst.Feature(1), inst.Label())
	}
	return sb.String()
}

func separableDataset(t *testing.T, n int, seed int64) *model.Dataset {
	d, err := model.NewDataset(separableInstances(n, rand.New(rand.NewSource(seed))))
	require.NoError(t, err)
	return d
}

// recordingPresenter answers plateaus from a fixed list, repeating the last decision.
type recordingPresenter struct {
	decisions []Decision
	progress  []Progress
	requests  []PlateauRequest
}

func (r *recordingPresenter) EpochCompleted(p Progress) {
	r.progress = append(r.progress, p)
}

func (r *recordingPresenter) PlateauReached(req PlateauRequest) Decision {
	r.requests = append(r.requests, req)
	d := r.decisions[0]
	if len(r.decisions) > 1 {
		r.decisions = r.decisions[1:]
	}
	return d
}
