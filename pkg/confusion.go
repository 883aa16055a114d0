package pkg

import (
	"fmt"
	gio "io"
	"strings"
	"text/tabwriter"

	"github.com/nlpodyssey/spago/pkg/ml/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"perceptron/pkg/model"
)

// ConfusionMatrix counts predictions per actual label (rows) and predicted label (columns).
type ConfusionMatrix struct {
	labels []string
	counts map[string]map[string]int
	total  int
}

// NewConfusionMatrix evaluates network on every instance of data. Rows and columns cover
// data's label list, which for a split or wrapped test set is the training label set.
func NewConfusionMatrix(network *model.Network, data *model.Dataset) (*ConfusionMatrix, error) {
	return Evaluate(network, data, NoopWriter{})
}

// Evaluate builds the confusion matrix and writes one label,predicted,maxOutput line per
// instance to predictions.
func Evaluate(network *model.Network, data *model.Dataset, predictions gio.Writer) (*ConfusionMatrix, error) {
	c := newConfusionMatrix(data.Labels())
	for i, inst := range data.Instances() {
		outputs := network.Feedforward(network.Normalize(inst.Features()))
		predicted := network.Classify(outputs)
		if err := c.record(inst.Label(), predicted); err != nil {
			return nil, errors.Wrapf(err, "instance %d", i)
		}
		fmt.Fprintf(predictions, "%s,%s,%.5f\n", inst.Label(), predicted, floats.Max(outputs))
	}
	return c, nil
}

func newConfusionMatrix(labels []string) *ConfusionMatrix {
	counts := make(map[string]map[string]int, len(labels))
	for _, actual := range labels {
		row := make(map[string]int, len(labels))
		for _, predicted := range labels {
			row[predicted] = 0
		}
		counts[actual] = row
	}
	return &ConfusionMatrix{labels: labels, counts: counts}
}

func (c *ConfusionMatrix) record(actual, predicted string) error {
	row, ok := c.counts[actual]
	if !ok {
		return errors.Wrapf(model.ErrUnknownLabel, "actual label %q", actual)
	}
	if _, ok := row[predicted]; !ok {
		return errors.Wrapf(model.ErrUnknownLabel, "predicted label %q", predicted)
	}
	row[predicted]++
	c.total++
	return nil
}

func (c *ConfusionMatrix) Labels() []string {
	return append([]string(nil), c.labels...)
}

func (c *ConfusionMatrix) Count(actual, predicted string) int {
	return c.counts[actual][predicted]
}

// Row returns a copy of the predicted-label counts for actual.
func (c *ConfusionMatrix) Row(actual string) map[string]int {
	row := make(map[string]int, len(c.labels))
	for predicted, count := range c.counts[actual] {
		row[predicted] = count
	}
	return row
}

func (c *ConfusionMatrix) RowTotal(actual string) int {
	total := 0
	for _, count := range c.counts[actual] {
		total += count
	}
	return total
}

func (c *ConfusionMatrix) Total() int {
	return c.total
}

func (c *ConfusionMatrix) Correct() int {
	correct := 0
	for _, label := range c.labels {
		correct += c.counts[label][label]
	}
	return correct
}

func (c *ConfusionMatrix) Accuracy() float64 {
	if c.total == 0 {
		return 0
	}
	return float64(c.Correct()) / float64(c.total)
}

// ClassMetrics derives one-vs-rest counts for every label.
func (c *ConfusionMatrix) ClassMetrics() map[string]*stats.ClassMetrics {
	metrics := make(map[string]*stats.ClassMetrics, len(c.labels))
	for _, label := range c.labels {
		m := stats.NewMetricCounter()
		for _, other := range c.labels {
			switch {
			case other == label:
				m.TruePos = c.counts[label][label]
			default:
				m.FalseNeg += c.counts[label][other]
				m.FalsePos += c.counts[other][label]
			}
		}
		m.TrueNeg = c.total - m.TruePos - m.FalseNeg - m.FalsePos
		metrics[label] = m
	}
	return metrics
}

// String renders the matrix as an aligned table with actual labels as rows.
func (c *ConfusionMatrix) String() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(w, "actual\\predicted\t")
	for _, label := range c.labels {
		fmt.Fprintf(w, "%s\t", label)
	}
	fmt.Fprintln(w)
	for _, actual := range c.labels {
		fmt.Fprintf(w, "%s\t", actual)
		for _, predicted := range c.labels {
			fmt.Fprintf(w, "%d\t", c.counts[actual][predicted])
		}
		fmt.Fprintln(w)
	}
	_ = w.Flush()
	return sb.String()
}

