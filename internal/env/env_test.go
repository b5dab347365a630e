package env_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/quadsim/internal/compute"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/env"
	"github.com/san-kum/quadsim/internal/quad"
)

func newStepper() *quad.Stepper {
	s, err := quad.NewStepper(quad.DefaultParams(), compute.NewSerial())
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Sampler", func() {
	var sampler *env.Sampler

	BeforeEach(func() {
		cfg := env.DefaultSamplerConfig()
		cfg.Seed = 42
		sampler = env.NewSampler(newStepper(), cfg)
	})

	It("produces batches with the full state layout", func() {
		states, refs, err := sampler.SampleStates(32)
		Expect(err).NotTo(HaveOccurred())
		Expect(states.Len()).To(Equal(32))
		Expect(states.Dim()).To(Equal(quad.StateDim))
		Expect(refs).To(HaveLen(env.DefaultSamplerConfig().Horizon))
		for _, ref := range refs {
			Expect(ref.Len()).To(Equal(32))
			Expect(ref.Dim()).To(Equal(quad.StateDim))
		}
	})

	It("never samples negative rotor speeds", func() {
		states, _, err := sampler.SampleStates(64)
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < states.Len(); i++ {
			for k := 0; k < 4; k++ {
				Expect(states.At(i, quad.OffRotorSpeed+k)).To(BeNumerically(">=", 0))
			}
		}
	})

	It("is deterministic for a fixed seed", func() {
		cfg := env.DefaultSamplerConfig()
		cfg.Seed = 7

		a, _, err := env.NewSampler(newStepper(), cfg).SampleStates(16)
		Expect(err).NotTo(HaveOccurred())
		b, _, err := env.NewSampler(newStepper(), cfg).SampleStates(16)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Raw()).To(Equal(b.Raw()))
	})

	It("produces finite reference trajectories", func() {
		_, refs, err := sampler.SampleStates(8)
		Expect(err).NotTo(HaveOccurred())
		for _, ref := range refs {
			Expect(ref.IsValid()).To(BeTrue())
		}
	})

	It("rejects non-positive sample sizes", func() {
		_, _, err := sampler.SampleStates(0)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Normalizer", func() {
	It("reports per-channel mean and std", func() {
		b := dynamo.FromRows([][]float64{
			{1, 10},
			{3, 10},
		})
		z := env.NewNormalizer(b)

		mean, std, err := z.MeanStd(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(mean).To(BeNumerically("~", 2, 1e-12))
		Expect(std).To(BeNumerically("~", 1, 1e-12))
	})

	It("replaces zero std with one", func() {
		b := dynamo.FromRows([][]float64{{5}, {5}, {5}})
		z := env.NewNormalizer(b)

		_, std, err := z.MeanStd(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(std).To(Equal(1.0))

		n, err := z.Normalize(b)
		Expect(err).NotTo(HaveOccurred())
		Expect(n.At(0, 0)).To(Equal(0.0))
	})

	It("round-trips through denormalize", func() {
		cfg := env.DefaultSamplerConfig()
		states, _, err := env.NewSampler(newStepper(), cfg).SampleStates(50)
		Expect(err).NotTo(HaveOccurred())

		z := env.NewNormalizer(states)
		n, err := z.Normalize(states)
		Expect(err).NotTo(HaveOccurred())
		back, err := z.Denormalize(n)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < states.Len(); i++ {
			for j := 0; j < states.Dim(); j++ {
				Expect(back.At(i, j)).To(BeNumerically("~", states.At(i, j), 1e-9))
			}
		}
	})

	It("normalizes sampled channels to unit scale", func() {
		cfg := env.DefaultSamplerConfig()
		states, _, err := env.NewSampler(newStepper(), cfg).SampleStates(200)
		Expect(err).NotTo(HaveOccurred())

		z := env.NewNormalizer(states)
		n, err := z.Normalize(states)
		Expect(err).NotTo(HaveOccurred())

		// Attitude channels were sampled with spread, so their normalized
		// columns have mean ~0 and std ~1.
		col := n.Col(quad.OffAttitude)
		mean := 0.0
		for _, v := range col {
			mean += v
		}
		mean /= float64(len(col))
		Expect(mean).To(BeNumerically("~", 0, 1e-9))

		variance := 0.0
		for _, v := range col {
			variance += (v - mean) * (v - mean)
		}
		Expect(math.Sqrt(variance / float64(len(col)))).To(BeNumerically("~", 1, 1e-9))
	})

	It("rejects out-of-range channels", func() {
		z := env.NewNormalizer(dynamo.NewBatch(1, quad.StateDim))
		_, _, err := z.MeanStd(-1)
		Expect(err).To(HaveOccurred())
		_, _, err = z.MeanStd(quad.StateDim)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Dataset", func() {
	var ds *env.Dataset

	BeforeEach(func() {
		cfg := env.DefaultSamplerConfig()
		cfg.Seed = 3
		cfg.Horizon = 5
		var err error
		ds, err = env.NewDataset(env.NewSampler(newStepper(), cfg), 24)
		Expect(err).NotTo(HaveOccurred())
	})

	It("exposes samples with both reference views", func() {
		Expect(ds.Len()).To(Equal(24))
		Expect(ds.Horizon()).To(Equal(5))

		state, refWorld, refBody := ds.At(0)
		Expect(state).To(HaveLen(quad.StateDim))
		Expect(refWorld).To(HaveLen(5))
		Expect(refBody).To(HaveLen(5))
	})

	It("makes reference positions relative to the vehicle", func() {
		// Sampled initial positions are zero, so a hover-ish reference stays
		// near the origin in the relative world view.
		_, refWorld, _ := ds.At(0)
		for _, row := range refWorld {
			for k := 0; k < 3; k++ {
				Expect(math.Abs(row[quad.OffPosition+k])).To(BeNumerically("<", 5.0))
			}
		}
	})

	It("keeps normalization statistics across resampling", func() {
		z := ds.Normalizer()
		mean0, std0, err := z.MeanStd(quad.OffRotorSpeed)
		Expect(err).NotTo(HaveOccurred())

		Expect(ds.Resample(24)).To(Succeed())
		Expect(ds.Normalizer()).To(BeIdenticalTo(z))

		mean1, std1, err := ds.Normalizer().MeanStd(quad.OffRotorSpeed)
		Expect(err).NotTo(HaveOccurred())
		Expect(mean1).To(Equal(mean0))
		Expect(std1).To(Equal(std0))
	})
})
