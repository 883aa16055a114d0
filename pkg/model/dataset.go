package model

import (
	"math/rand"

	"github.com/pkg/errors"
)

var (
	ErrArity        = errors.New("feature arity mismatch")
	ErrEmptyDataset = errors.New("dataset has no instances")
)

// Instance is a single labeled record. It is not modified after creation.
type Instance struct {
	features []float64
	label    string
}

func NewInstance(features []float64, label string) Instance {
	f := make([]float64, len(features))
	copy(f, features)
	return Instance{features: f, label: label}
}

// Features returns a copy of the feature vector.
func (i Instance) Features() []float64 {
	result := make([]float64, len(i.features))
	copy(result, i.features)
	return result
}

func (i Instance) Feature(index int) float64 {
	return i.features[index]
}

func (i Instance) NumFeatures() int {
	return len(i.features)
}

func (i Instance) Label() string {
	return i.label
}

// Dataset owns a list of instances together with the per-feature minimum and maximum and the
// sorted set of distinct labels used for normalization and class encoding.
type Dataset struct {
	instances []Instance
	min       []float64
	max       []float64
	labels    []string
}

// NewDataset derives min, max and labels from instances.
func NewDataset(instances []Instance) (*Dataset, error) {
	d := &Dataset{instances: append([]Instance(nil), instances...)}
	if len(instances) == 0 {
		return d, nil
	}
	arity := instances[0].NumFeatures()
	d.min = instances[0].Features()
	d.max = instances[0].Features()
	labels := make([]string, 0, len(instances))
	for line, inst := range instances {
		if inst.NumFeatures() != arity {
			return nil, errors.Wrapf(ErrArity, "instance %d has %d features, expected %d", line, inst.NumFeatures(), arity)
		}
		labels = append(labels, inst.label)
		for i, v := range inst.features {
			if v < d.min[i] {
				d.min[i] = v
			}
			if v > d.max[i] {
				d.max[i] = v
			}
		}
	}
	d.labels = sortedUnique(labels)
	return d, nil
}

// NewDatasetWithStats wraps instances with statistics computed elsewhere, typically from the
// training data, so that they are never recomputed from a subsample.
func NewDatasetWithStats(instances []Instance, min, max []float64, labels []string) (*Dataset, error) {
	if len(min) != len(max) {
		return nil, errors.Wrapf(ErrArity, "min has %d entries, max has %d", len(min), len(max))
	}
	for line, inst := range instances {
		if inst.NumFeatures() != len(min) {
			return nil, errors.Wrapf(ErrArity, "instance %d has %d features, expected %d", line, inst.NumFeatures(), len(min))
		}
	}
	return &Dataset{
		instances: append([]Instance(nil), instances...),
		min:       min,
		max:       max,
		labels:    labels,
	}, nil
}

// Instances returns a copy of the instance list; the caller may reorder it freely.
func (d *Dataset) Instances() []Instance {
	return append([]Instance(nil), d.instances...)
}

func (d *Dataset) Size() int {
	return len(d.instances)
}

func (d *Dataset) Min() []float64 {
	return append([]float64(nil), d.min...)
}

func (d *Dataset) Max() []float64 {
	return append([]float64(nil), d.max...)
}

// Labels returns the distinct labels in lexicographic order.
func (d *Dataset) Labels() []string {
	return append([]string(nil), d.labels...)
}

func (d *Dataset) NumFeatures() int {
	return len(d.min)
}

func (d *Dataset) NumClasses() int {
	return len(d.labels)
}

// Split shuffles the instances and cuts them at int(size*trainFraction). Both halves share this
// dataset's min, max and labels.
func (d *Dataset) Split(trainFraction float64, rnd *rand.Rand) (*Dataset, *Dataset, error) {
	if trainFraction <= 0 || trainFraction >= 1 {
		return nil, nil, errors.Errorf("train fraction must be in (0, 1), got %g", trainFraction)
	}
	if len(d.instances) == 0 {
		return nil, nil, ErrEmptyDataset
	}
	indices := rnd.Perm(len(d.instances))
	cut := int(float64(len(indices)) * trainFraction)
	train := make([]Instance, 0, cut)
	test := make([]Instance, 0, len(indices)-cut)
	for i, index := range indices {
		if i < cut {
			train = append(train, d.instances[index])
		} else {
			test = append(test, d.instances[index])
		}
	}
	return &Dataset{instances: train, min: d.min, max: d.max, labels: d.labels},
		&Dataset{instances: test, min: d.min, max: d.max, labels: d.labels}, nil
}
