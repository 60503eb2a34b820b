package analysis_test

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/go-logr/zapr"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/bifsim/internal/analysis"
	"github.com/san-kum/bifsim/internal/dynamo"
)

var _ = Describe("Sweeper", func() {
	var (
		ctx     context.Context
		sweeper *analysis.Sweeper
		spec    analysis.SweepSpec
	)

	BeforeEach(func() {
		ctx = context.Background()
		opts := analysis.DefaultOptions()
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(GinkgoWriter), zapcore.DebugLevel)
		opts.Logger = zapr.NewLogger(zap.New(core))
		sweeper = analysis.NewSweeper(opts)
		spec = analysis.SweepSpec{RMin: -0.1, RMax: 0.1, XMin: -2, XMax: 2}
	})

	Context("canonical normal forms", func() {
		It("finds exactly one saddle-node for r + x^2", func() {
			spec.Expression = "r + x^2"
			res, err := sweeper.Run(ctx, spec)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Rs).To(HaveLen(151))
			Expect(eventTypes(res)).To(Equal([]dynamo.BifurcationType{dynamo.SaddleNode}))
			Expect(math.Abs(res.Bifurcations[0].R)).To(BeNumerically("<", 0.01))
		})

		It("finds exactly one transcritical event for r*x - x^2", func() {
			spec.Expression = "r*x - x^2"
			res, err := sweeper.Run(ctx, spec)
			Expect(err).NotTo(HaveOccurred())
			Expect(eventTypes(res)).To(Equal([]dynamo.BifurcationType{dynamo.Transcritical}))
			Expect(math.Abs(res.Bifurcations[0].R)).To(BeNumerically("<", 0.02))
		})

		It("finds exactly one pitchfork for r*x - x^3", func() {
			spec.Expression = "r*x - x**3"
			res, err := sweeper.Run(ctx, spec)
			Expect(err).NotTo(HaveOccurred())
			Expect(eventTypes(res)).To(Equal([]dynamo.BifurcationType{dynamo.Pitchfork}))
			ev := res.Bifurcations[0]
			Expect(math.Abs(ev.R)).To(BeNumerically("<", 0.01))
			Expect(ev.Before).To(Equal(1))
			Expect(ev.After).To(Equal(3))
		})

		It("reports nothing for a field without real roots", func() {
			spec.Expression = "-x^2 - 1"
			res, err := sweeper.Run(ctx, spec)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Empty()).To(BeTrue())
			Expect(res.Branches).To(BeEmpty())
			Expect(res.Bifurcations).NotTo(BeNil())
			Expect(res.Bifurcations).To(BeEmpty())
		})

		It("handles non-polynomial fields through the numeric path", func() {
			res, err := sweeper.RunField(ctx, mustField("r - cosh(x)"), analysis.SweepSpec{
				RMin: 0, RMax: 3, XMin: -3, XMax: 3, Steps: 61,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(eventTypes(res)).To(Equal([]dynamo.BifurcationType{dynamo.SaddleNode}))
			Expect(res.Bifurcations[0].R).To(BeNumerically("~", 1, 0.05))
		})
	})

	Context("result structure", func() {
		var res *dynamo.SweepResult

		BeforeEach(func() {
			var err error
			res, err = sweeper.Run(ctx, analysis.SweepSpec{
				Expression: "r*x - x^3", RMin: -1, RMax: 1, XMin: -2, XMax: 2,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("labels the derivative", func() {
			Expect(res.Derivative).To(Equal("r - 3 * x^2"))
		})

		It("keeps roots ascending and distinct with one label each", func() {
			for i, roots := range res.Roots {
				Expect(sort.Float64sAreSorted(roots)).To(BeTrue())
				Expect(res.Stabilities[i]).To(HaveLen(len(roots)))
				Expect(res.Slopes[i]).To(HaveLen(len(roots)))
				for j := 1; j < len(roots); j++ {
					Expect(roots[j] - roots[j-1]).To(BeNumerically(">", 1e-6))
				}
			}
		})

		It("distributes every root to exactly one branch", func() {
			for i := range res.Rs {
				var got []float64
				for _, b := range res.Branches {
					Expect(b.X).To(HaveLen(len(res.Rs)))
					if b.Present(i) {
						got = append(got, b.X[i])
					}
				}
				sort.Float64s(got)
				Expect(got).To(HaveLen(len(res.Roots[i])))
				for j := range got {
					Expect(got[j]).To(Equal(res.Roots[i][j]))
				}
			}
		})

		It("produces continuous branches", func() {
			f := mustField("r*x - x^3")
			for i := 1; i < len(res.Rs); i++ {
				prev := analysis.FindEquilibria(f, res.Rs[i-1], -2, 2)
				cur := analysis.FindEquilibria(f, res.Rs[i], -2, 2)
				bound := largestJump(prev, cur) + 1e-9
				for _, b := range res.Branches {
					if b.Present(i) && b.Present(i-1) {
						Expect(math.Abs(b.X[i]-b.X[i-1])).To(BeNumerically("<=", bound), "step %d", i)
					}
				}
			}
		})

		It("labels the outer pitchfork branches stable", func() {
			last := len(res.Rs) - 1
			Expect(res.Roots[last]).To(HaveLen(3))
			Expect(res.Stabilities[last]).To(Equal([]dynamo.Stability{dynamo.Stable, dynamo.Unstable, dynamo.Stable}))
			Expect(res.Stabilities[0]).To(Equal([]dynamo.Stability{dynamo.Stable}))
		})
	})

	Context("determinism", func() {
		It("returns identical results on repeated runs", func() {
			spec.Expression = "r*x + x^3 - x^5"
			spec.RMin, spec.RMax = -0.5, 0.5
			a, err := sweeper.Run(ctx, spec)
			Expect(err).NotTo(HaveOccurred())
			b, err := sweeper.Run(ctx, spec)
			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Diff(a, b, cmpopts.EquateNaNs())).To(BeEmpty())
		})

		It("does not depend on the number of workers", func() {
			spec = analysis.SweepSpec{Expression: "x*(r - exp(x))", RMin: 0, RMax: 2, XMin: -3, XMax: 3}
			serial, err := sweeper.Run(ctx, spec)
			Expect(err).NotTo(HaveOccurred())

			opts := analysis.DefaultOptions()
			opts.Workers = 4
			parallel, err := analysis.NewSweeper(opts).Run(ctx, spec)
			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Diff(serial, parallel, cmpopts.EquateNaNs())).To(BeEmpty())
		})
	})

	Context("sampling", func() {
		DescribeTable("AutoSteps",
			func(lo, hi float64, want int) {
				Expect(analysis.AutoSteps(lo, hi)).To(Equal(want))
			},
			Entry("narrow range", -0.1, 0.1, 151),
			Entry("degenerate range", 0.0, 0.0, 151),
			Entry("medium range", -2.0, 2.0, 400),
			Entry("wide range", -10.0, 10.0, 801),
		)

		It("honours an explicit step count", func() {
			spec.Expression = "r + x^2"
			spec.Steps = 11
			res, err := sweeper.Run(ctx, spec)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Rs).To(HaveLen(11))
			Expect(res.Rs[0]).To(Equal(-0.1))
			Expect(res.Rs[10]).To(BeNumerically("~", 0.1, 1e-15))
		})

		It("accepts a single sample", func() {
			res, err := sweeper.Run(ctx, analysis.SweepSpec{
				Expression: "r + x^2", RMin: -1, RMax: -1, XMin: -2, XMax: 2, Steps: 1,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Rs).To(Equal([]float64{-1}))
			Expect(res.Bifurcations).To(BeEmpty())
			Expect(res.Branches).To(HaveLen(2))
		})
	})

	Context("errors", func() {
		It("rejects malformed expressions before sampling", func() {
			spec.Expression = "r*x +"
			_, err := sweeper.Run(ctx, spec)
			Expect(errors.Is(err, dynamo.ErrInvalidExpression)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("r*x +"))
		})

		It("rejects unknown identifiers", func() {
			spec.Expression = "r*y"
			_, err := sweeper.Run(ctx, spec)
			Expect(errors.Is(err, dynamo.ErrInvalidExpression)).To(BeTrue())
		})

		DescribeTable("invalid ranges",
			func(mod func(*analysis.SweepSpec), want error) {
				spec.Expression = "r + x^2"
				mod(&spec)
				_, err := sweeper.Run(ctx, spec)
				Expect(errors.Is(err, want)).To(BeTrue(), "got %v", err)
			},
			Entry("inverted r", func(s *analysis.SweepSpec) { s.RMin, s.RMax = 1, -1 }, dynamo.ErrParameterBounds),
			Entry("non-finite r", func(s *analysis.SweepSpec) { s.RMax = math.Inf(1) }, dynamo.ErrParameterBounds),
			Entry("empty window", func(s *analysis.SweepSpec) { s.XMin, s.XMax = 1, 1 }, dynamo.ErrSearchWindow),
			Entry("NaN window", func(s *analysis.SweepSpec) { s.XMin = math.NaN() }, dynamo.ErrSearchWindow),
			Entry("negative steps", func(s *analysis.SweepSpec) { s.Steps = -1 }, dynamo.ErrInvalidSteps),
		)

		It("stops on a canceled context", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			spec.Expression = "r + x^2"
			_, err := sweeper.Run(cctx, spec)
			Expect(errors.Is(err, dynamo.ErrContextCanceled)).To(BeTrue())
			var se *dynamo.SweepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Step).To(Equal(0))
		})
	})
})
