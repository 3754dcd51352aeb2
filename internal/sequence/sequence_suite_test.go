package sequence_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
	"github.com/Xterminate1818/fishbowl/internal/physics"
	"github.com/Xterminate1818/fishbowl/internal/sequence"
)

func TestSequence(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sequence Suite")
}

var errDevice = errors.New("device lost")

// recordingRenderer encodes the circle count of each draw into the frame.
type recordingRenderer struct {
	mu      sync.Mutex
	counts  []int
	failAt  int
	resized bool
	maxSeen int
}

func (r *recordingRenderer) Name() string { return "recording" }

func (r *recordingRenderer) Resize(width, height, maxCircles int) error {
	r.resized = true
	r.maxSeen = maxCircles
	return nil
}

func (r *recordingRenderer) Draw(circles []bowl.Circle) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAt >= 0 && len(r.counts) == r.failAt {
		return nil, errDevice
	}
	r.counts = append(r.counts, len(circles))
	return []byte{byte(len(circles))}, nil
}

func (r *recordingRenderer) Close() {}

var _ = Describe("Run", func() {
	var (
		opts physics.Options
		plan sequence.Plan
		rend *recordingRenderer
	)

	BeforeEach(func() {
		opts = physics.DefaultOptions(64, 64, 4, 3)
		plan = sequence.Plan{
			Options:         opts,
			TotalIterations: opts.Seed + 50*opts.Substeps,
			MaxParticles:    physics.Capacity(64, 64, 4),
		}
		rend = &recordingRenderer{failAt: -1}
	})

	It("renders frames in capture order at stride intervals", func() {
		frames, err := sequence.Run(context.Background(), rend, plan, 10, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(HaveLen(5))
		Expect(sequence.FrameCount(plan, 10)).To(Equal(5))

		for i, f := range frames {
			Expect(f.Index).To(Equal(i))
			Expect(f.Clock).To(Equal(opts.Seed + i*10*opts.Substeps))
			Expect(int(f.Pixels[0])).To(Equal(rend.counts[i]))
		}
	})

	It("starts from an empty bowl and grows", func() {
		_, err := sequence.Run(context.Background(), rend, plan, 10, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(rend.counts[0]).To(BeZero())
		Expect(rend.counts[1]).To(Equal(20))
		for _, c := range rend.counts {
			Expect(c).To(BeNumerically("<=", plan.MaxParticles))
		}
	})

	It("rounds a partial final stride up to one more frame", func() {
		Expect(sequence.FrameCount(plan, 7)).To(Equal(8))
		frames, err := sequence.Run(context.Background(), rend, plan, 7, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(HaveLen(8))
	})

	It("sizes the renderer for the particle budget", func() {
		_, err := sequence.Run(context.Background(), rend, plan, 10, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(rend.resized).To(BeTrue())
		Expect(rend.maxSeen).To(Equal(plan.MaxParticles))
	})

	It("produces no frames when calibration ran zero iterations", func() {
		plan.TotalIterations = opts.Seed
		frames, err := sequence.Run(context.Background(), rend, plan, 10, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(BeEmpty())
	})

	It("replays deterministically", func() {
		first, err := sequence.Run(context.Background(), rend, plan, 5, nil)
		Expect(err).NotTo(HaveOccurred())
		second, err := sequence.Run(context.Background(), &recordingRenderer{failAt: -1}, plan, 5, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(first))
	})

	It("aborts with the failing frame on a render error", func() {
		rend.failAt = 2
		frames, err := sequence.Run(context.Background(), rend, plan, 10, nil)
		Expect(err).To(MatchError(errDevice))

		var fe *bowl.FrameError
		Expect(errors.As(err, &fe)).To(BeTrue())
		Expect(fe.Frame).To(Equal(2))
		Expect(fe.Clock).To(Equal(opts.Seed + 2*10*opts.Substeps))
		Expect(frames).To(HaveLen(2))
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		frames, err := sequence.Run(ctx, rend, plan, 10, nil)
		Expect(err).To(MatchError(context.Canceled))
		Expect(frames).To(BeEmpty())
	})

	It("rejects a non-positive stride", func() {
		_, err := sequence.Run(context.Background(), rend, plan, 0, nil)
		Expect(err).To(MatchError(bowl.ErrParameterBounds))
	})
})
