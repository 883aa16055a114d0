package pkg

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"perceptron/pkg/model"
)

// Progress is sent after every epoch. Receivers may miss intermediate values.
type Progress struct {
	Epoch int
	Error float64
}

// PlateauRequest suspends the training worker until exactly one Decision is sent on Response.
type PlateauRequest struct {
	Epoch        int
	Error        float64
	StdDev       float64
	LearningRate float64
	Response     chan<- Decision
}

type TrainingResult struct {
	Network    *model.Network
	FinalError float64
	Epochs     int

	// History holds the mean error of every completed epoch
	History []float64

	LearningRate float64
	// Stopped is set when training ended on a Stop decision
	Stopped bool
}

type outcome struct {
	result *TrainingResult
	err    error
}

// Trainer runs the epoch loop over a training dataset. The network, dataset and history belong to
// the worker goroutine until the outcome has been delivered.
type Trainer struct {
	network      *model.Network
	data         *model.Dataset
	maxEpochs    int
	desiredError float64
	rnd          *rand.Rand

	progress chan Progress
	plateaus chan PlateauRequest
}

func NewTrainer(network *model.Network, data *model.Dataset, maxEpochs int, desiredError float64, rnd *rand.Rand) (*Trainer, error) {
	if maxEpochs <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "epochs must be positive, got %d", maxEpochs)
	}
	if desiredError < 0 || math.IsNaN(desiredError) {
		return nil, errors.Wrapf(ErrInvalidParameter, "desired error must be non-negative, got %g", desiredError)
	}
	if data.Size() == 0 {
		return nil, model.ErrEmptyDataset
	}
	return &Trainer{
		network:      network,
		data:         data,
		maxEpochs:    maxEpochs,
		desiredError: desiredError,
		rnd:          rnd,
		progress:     make(chan Progress, 1),
		plateaus:     make(chan PlateauRequest),
	}, nil
}

// Progress delivers per-epoch notifications. Only the latest unread value is kept.
func (t *Trainer) Progress() <-chan Progress {
	return t.progress
}

// Plateaus delivers plateau requests. The worker blocks until each one is received and answered.
func (t *Trainer) Plateaus() <-chan PlateauRequest {
	return t.plateaus
}

// start runs the loop on its own goroutine and delivers its outcome once.
func (t *Trainer) start() <-chan outcome {
	done := make(chan outcome, 1)
	go func() {
		result, err := t.run()
		done <- outcome{result: result, err: err}
	}()
	return done
}

func (t *Trainer) run() (result *TrainingResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			if cause, ok := r.(error); ok {
				err = errors.Wrap(cause, "training failed")
			} else {
				err = errors.Errorf("training failed: %v", r)
			}
			result = nil
		}
	}()

	instances := t.data.Instances()
	detector := newPlateauDetector()
	history := make([]float64, 0, t.maxEpochs)
	epoch := 0
	epochError := math.Inf(1)
	stopped := false

	for epoch < t.maxEpochs && epochError > t.desiredError {
		epochError, err = t.trainEpoch(instances)
		if err != nil {
			return nil, errors.Wrapf(err, "epoch %d", epoch+1)
		}
		epoch++
		history = append(history, epochError)
		t.notify(Progress{Epoch: epoch, Error: epochError})

		stdDev, _, plateau := detector.observe(epochError)
		if !plateau {
			continue
		}
		log.Warn().Int("Epoch", epoch).Float64("StdDev", stdDev).Msg("plateau detected")
		decision := t.awaitDecision(PlateauRequest{
			Epoch:        epoch,
			Error:        epochError,
			StdDev:       stdDev,
			LearningRate: t.network.LearningRate(),
		})
		if decision == Stop {
			stopped = true
			break
		}
		if decision == ReduceLearningRate {
			t.network.SetLearningRate(t.network.LearningRate() * LearningRateReduction)
		}
		detector.reset()
	}

	return &TrainingResult{
		Network:      t.network,
		FinalError:   epochError,
		Epochs:       epoch,
		History:      history,
		LearningRate: t.network.LearningRate(),
		Stopped:      stopped,
	}, nil
}

// trainEpoch shuffles the instances in place, applies one online update per instance and returns
// the mean of 0.5*(target-output)^2 summed over the output units.
func (t *Trainer) trainEpoch(instances []model.Instance) (float64, error) {
	t.rnd.Shuffle(len(instances), func(i, j int) {
		instances[i], instances[j] = instances[j], instances[i]
	})
	sum := 0.0
	for _, inst := range instances {
		inputs := t.network.Normalize(inst.Features())
		target, err := t.network.Target(inst.Label())
		if err != nil {
			return 0, err
		}
		outputs := t.network.Feedforward(inputs)
		t.network.Backpropagate(inputs, target)
		for i := range target {
			diff := target[i] - outputs[i]
			sum += 0.5 * diff * diff
		}
	}
	return sum / float64(len(instances)), nil
}

func (t *Trainer) notify(p Progress) {
	for {
		select {
		case t.progress <- p:
			return
		default:
			// drop the stale value nobody has read yet
			select {
			case <-t.progress:
			default:
			}
		}
	}
}

func (t *Trainer) awaitDecision(request PlateauRequest) Decision {
	response := make(chan Decision, 1)
	request.Response = response
	t.plateaus <- request
	return <-response
}
