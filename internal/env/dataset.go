package env

import (
	"fmt"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/quad"
)

// Dataset shapes sampled state batches for a training consumer: states are
// normalized per channel, and each state carries its reference trajectory in
// two views — world frame with positions relative to the vehicle, and body
// frame with position and velocity rotated by the vehicle's attitude.
type Dataset struct {
	sampler *Sampler
	norm    *Normalizer

	states   dynamo.Batch   // normalized, (n, 20)
	refWorld []dynamo.Batch // per horizon step, position-relative
	refBody  []dynamo.Batch // per horizon step, rotated into body frame
}

// NewDataset samples n states, fits the normalizer on the raw sample and
// prepares both reference views. The normalizer is fitted once; Resample
// reuses it so statistics stay comparable across refreshes.
func NewDataset(sampler *Sampler, n int) (*Dataset, error) {
	d := &Dataset{sampler: sampler}
	raw, refs, err := sampler.SampleStates(n)
	if err != nil {
		return nil, err
	}
	d.norm = NewNormalizer(raw)
	if err := d.prepare(raw, refs); err != nil {
		return nil, err
	}
	return d, nil
}

// Resample replaces the dataset contents with a fresh sample, keeping the
// originally fitted normalization statistics.
func (d *Dataset) Resample(n int) error {
	raw, refs, err := d.sampler.SampleStates(n)
	if err != nil {
		return err
	}
	return d.prepare(raw, refs)
}

func (d *Dataset) prepare(raw dynamo.Batch, refs []dynamo.Batch) error {
	n := raw.Len()

	// Attitude rows feed the world-to-body rotation of the reference views.
	attitude := dynamo.NewBatch(n, 3)
	for i := 0; i < n; i++ {
		copy(attitude.Row(i), raw.Row(i)[quad.OffAttitude:quad.OffVelocity])
	}
	rot := quad.WorldToBody(attitude)

	refWorld := make([]dynamo.Batch, len(refs))
	refBody := make([]dynamo.Batch, len(refs))
	for h, ref := range refs {
		if err := dynamo.CheckAligned(raw, ref, "states", "reference"); err != nil {
			return fmt.Errorf("reference step %d: %w", h, err)
		}
		world := ref.Clone()
		for i := 0; i < n; i++ {
			row := world.Row(i)
			pos := raw.Row(i)
			for k := 0; k < 3; k++ {
				row[quad.OffPosition+k] -= pos[quad.OffPosition+k]
			}
		}
		body := world.Clone()
		for i := 0; i < n; i++ {
			row := body.Row(i)
			m := rot.Row(i)
			rotateInto(m, row[quad.OffPosition:quad.OffAttitude])
			rotateInto(m, row[quad.OffVelocity:quad.OffRotorSpeed])
		}
		refWorld[h] = world
		refBody[h] = body
	}

	normed, err := d.norm.Normalize(raw)
	if err != nil {
		return err
	}

	d.states = normed
	d.refWorld = refWorld
	d.refBody = refBody
	return nil
}

// rotateInto applies the row-major 3x3 matrix m to v in place.
func rotateInto(m, v []float64) {
	x := m[0]*v[0] + m[1]*v[1] + m[2]*v[2]
	y := m[3]*v[0] + m[4]*v[1] + m[5]*v[2]
	z := m[6]*v[0] + m[7]*v[1] + m[8]*v[2]
	v[0], v[1], v[2] = x, y, z
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return d.states.Len() }

// Horizon returns the reference trajectory length in steps.
func (d *Dataset) Horizon() int { return len(d.refWorld) }

// Normalizer exposes the fitted per-channel statistics.
func (d *Dataset) Normalizer() *Normalizer { return d.norm }

// At returns sample i: the normalized state row and the world- and
// body-frame reference rows across the horizon. Rows alias dataset storage.
func (d *Dataset) At(i int) (state []float64, refWorld, refBody [][]float64) {
	state = d.states.Row(i)
	refWorld = make([][]float64, len(d.refWorld))
	refBody = make([][]float64, len(d.refBody))
	for h := range d.refWorld {
		refWorld[h] = d.refWorld[h].Row(i)
		refBody[h] = d.refBody[h].Row(i)
	}
	return state, refWorld, refBody
}
