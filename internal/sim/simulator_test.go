package sim_test

import (
	"context"
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mowsim/internal/integrators"
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/telemetry"
)

// scripted replays a fixed list of commands, one per tick, and ends once it
// runs out.
type scripted struct {
	cmds  []robot.Actuation
	seen  []sim.Readback
	index int
}

func (s *scripted) Initialize([]robot.Instruction) (telemetry.Debug, int) {
	d := telemetry.New()
	d.Logf("init")
	return d, -1
}

func (s *scripted) Step(_ time.Duration, in sim.Readback) sim.Step[int] {
	s.seen = append(s.seen, in)
	d := telemetry.New()
	if s.index >= len(s.cmds) {
		return sim.Step[int]{Actuation: in.Actuation, End: true, Debug: d, State: s.index}
	}
	u := s.cmds[s.index]
	s.index++
	d.Logf("tick %d", s.index)
	return sim.Step[int]{Actuation: u, Debug: d, State: s.index}
}

type counter struct{ n int }

func (c *counter) Name() string           { return "count" }
func (c *counter) Observe(sim.Transition) { c.n++ }
func (c *counter) Value() float64         { return float64(c.n) }
func (c *counter) Reset()                 { c.n = 0 }

type recorder struct{ ticks []int }

func (r *recorder) OnStep(tr sim.Transition, _ telemetry.Debug) { r.ticks = append(r.ticks, tr.Tick) }

func newInput(length sim.Length) sim.Input {
	return sim.Input{
		SimLength: length,
		DeltaTime: sim.Dur(10 * time.Millisecond),
		Physical:  robot.DefaultPhysical(),
	}
}

func forward(n int) []robot.Actuation {
	cmds := make([]robot.Actuation, n)
	for i := range cmds {
		cmds[i] = robot.Actuation{MotorLeft: 0.5, MotorRight: 0.5}
	}
	return cmds
}

var _ = Describe("Simulator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("starts the trace at the origin with the init telemetry", func() {
		s := sim.New[int](integrators.NewEuler(), &scripted{})

		out, err := s.Run(ctx, newInput(sim.RunSteps(0)))

		Expect(err).NotTo(HaveOccurred())
		Expect(out.States).To(HaveLen(1))
		Expect(out.States[0].Pose()).To(Equal(robot.Pose{}))
		Expect(out.States[0].BladeOn).To(BeFalse())
		Expect(out.States[0].Debug.Messages).To(Equal([]string{"init"}))
		Expect(out.States[0].Control).To(Equal(-1))
	})

	It("ignores the end signal under a step budget", func() {
		s := sim.New[int](integrators.NewEuler(), &scripted{})

		out, err := s.Run(ctx, newInput(sim.RunSteps(10)))

		Expect(err).NotTo(HaveOccurred())
		Expect(out.States).To(HaveLen(11))
		Expect(out.Ticks()).To(Equal(10))
	})

	It("honours the end signal when indefinite", func() {
		s := sim.New[int](integrators.NewEuler(), &scripted{cmds: forward(3)})

		out, err := s.Run(ctx, newInput(sim.RunIndefinitely()))

		Expect(err).NotTo(HaveOccurred())
		Expect(out.States).To(HaveLen(5))
	})

	It("rounds a timed budget up to whole ticks", func() {
		s := sim.New[int](integrators.NewEuler(), &scripted{})

		out, err := s.Run(ctx, newInput(sim.RunFor(25*time.Millisecond)))

		Expect(err).NotTo(HaveOccurred())
		Expect(out.Ticks()).To(Equal(3))
	})

	It("clamps motor powers before integrating", func() {
		ctrl := &scripted{cmds: []robot.Actuation{{MotorLeft: 3, MotorRight: 3}}}
		s := sim.New[int](integrators.NewEuler(), ctrl)

		out, err := s.Run(ctx, newInput(sim.RunSteps(1)))

		Expect(err).NotTo(HaveOccurred())
		p := robot.DefaultPhysical()
		Expect(out.Final().RobotX).To(BeNumerically("~", p.WheelRadius*p.MaxMotorSpeed*0.01, 1e-12))
		Expect(out.Final().MotorLeft).To(Equal(1.0))
	})

	It("feeds back the pose and the previous command", func() {
		ctrl := &scripted{cmds: []robot.Actuation{{MotorLeft: -2, MotorRight: 0.5, BladeOn: true}}}
		s := sim.New[int](integrators.NewEuler(), ctrl)

		out, err := s.Run(ctx, newInput(sim.RunSteps(2)))

		Expect(err).NotTo(HaveOccurred())
		Expect(ctrl.seen).To(HaveLen(2))
		Expect(ctrl.seen[0].Pose).To(Equal(robot.Pose{}))
		Expect(ctrl.seen[0].Physical).To(Equal(robot.DefaultPhysical()))
		Expect(ctrl.seen[1].Pose).To(Equal(out.States[1].Pose()))
		Expect(ctrl.seen[1].Actuation).To(Equal(robot.Actuation{MotorLeft: -1, MotorRight: 0.5, BladeOn: true}))
		// the command carries over, so the robot keeps turning
		Expect(out.States[2].RobotTheta).To(BeNumerically(">", out.States[1].RobotTheta))
	})

	It("reports metrics and notifies observers every tick", func() {
		obs := &recorder{}
		s := sim.New[int](integrators.NewEuler(), &scripted{})
		s.AddMetric(&counter{})
		s.AddObserver(obs)

		out, err := s.Run(ctx, newInput(sim.RunSteps(4)))

		Expect(err).NotTo(HaveOccurred())
		Expect(out.Metrics).To(HaveKeyWithValue("count", 4.0))
		Expect(obs.ticks).To(Equal([]int{1, 2, 3, 4}))
	})

	It("returns the partial trace when cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		obs := observerFunc(func(tr sim.Transition) {
			if tr.Tick == 3 {
				cancel()
			}
		})
		s := sim.New[int](integrators.NewEuler(), &scripted{cmds: forward(100)})
		s.AddObserver(obs)

		out, err := s.Run(cctx, newInput(sim.RunIndefinitely()))

		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(out).NotTo(BeNil())
		Expect(out.Ticks()).To(Equal(3))
	})

	It("stops when the pose blows up", func() {
		s := sim.New[int](integrators.NewEuler(), &scripted{cmds: forward(5)}).
			WithDynamics(func(robot.Physical) sim.Dynamics { return nanDynamics{} })

		out, err := s.Run(ctx, newInput(sim.RunSteps(5)))

		var simErr *sim.SimError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(simErr.Tick).To(Equal(1))
		Expect(errors.Is(err, sim.ErrInvalidState)).To(BeTrue())
		Expect(out.States).To(HaveLen(1))
	})

	It("rejects bad inputs", func() {
		s := sim.New[int](integrators.NewEuler(), &scripted{})

		in := newInput(sim.RunSteps(1))
		in.DeltaTime = sim.Dur(0)
		_, err := s.Run(ctx, in)
		Expect(err).To(HaveOccurred())

		_, err = s.Run(ctx, newInput(sim.RunFor(0)))
		Expect(errors.Is(err, sim.ErrInvalidLength)).To(BeTrue())

		_, err = sim.New[int](integrators.NewEuler(), nil).Run(ctx, newInput(sim.RunSteps(1)))
		Expect(errors.Is(err, sim.ErrNoController)).To(BeTrue())
	})

	It("streams records through a callback", func() {
		s := sim.New[int](integrators.NewEuler(), &scripted{cmds: forward(100)})

		var got []sim.Record[int]
		err := s.RunWithCallback(ctx, newInput(sim.RunIndefinitely()), func(r sim.Record[int]) bool {
			got = append(got, r)
			return len(got) < 6
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(6))
		Expect(got[5].RobotX).To(BeNumerically(">", got[4].RobotX))
	})

	It("reproduces identical traces", func() {
		in := newInput(sim.RunSteps(50))
		a, err := sim.New[int](integrators.NewRK4(), &scripted{cmds: forward(30)}).Run(ctx, in)
		Expect(err).NotTo(HaveOccurred())
		b, err := sim.New[int](integrators.NewRK4(), &scripted{cmds: forward(30)}).Run(ctx, in)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})
})

var _ = Describe("Ensemble", func() {
	factory := func() *sim.Simulator[int] {
		return sim.New[int](integrators.NewEuler(), &scripted{cmds: forward(100)})
	}

	It("runs every input and keeps their order", func() {
		inputs := []sim.Input{
			newInput(sim.RunSteps(1)),
			newInput(sim.RunSteps(5)),
			newInput(sim.RunSteps(20)),
		}
		outs, err := sim.NewEnsemble[int](2).RunInputs(context.Background(), factory, inputs)

		Expect(err).NotTo(HaveOccurred())
		Expect(outs).To(HaveLen(3))
		Expect(outs[0].Ticks()).To(Equal(1))
		Expect(outs[1].Ticks()).To(Equal(5))
		Expect(outs[2].Ticks()).To(Equal(20))
	})

	It("passes each job its own index", func() {
		outs, err := sim.NewEnsemble[int](0).Run(context.Background(), 4, func(ctx context.Context, i int) (*sim.Output[int], error) {
			return factory().Run(ctx, newInput(sim.RunSteps(i+1)))
		})

		Expect(err).NotTo(HaveOccurred())
		for i, out := range outs {
			Expect(out.Ticks()).To(Equal(i + 1))
		}
	})

	It("returns the first failure", func() {
		e := sim.NewEnsemble[int](1)

		outs, err := e.RunInputs(context.Background(), factory, []sim.Input{newInput(sim.RunSteps(3)), newInput(sim.RunSteps(-1))})

		Expect(errors.Is(err, sim.ErrInvalidLength)).To(BeTrue())
		Expect(outs[0].Ticks()).To(Equal(3))
	})

	It("runs nothing for an empty batch", func() {
		outs, err := sim.NewEnsemble[int](2).Run(context.Background(), 0, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(outs).To(BeEmpty())
	})
})

type observerFunc func(sim.Transition)

func (f observerFunc) OnStep(tr sim.Transition, _ telemetry.Debug) { f(tr) }

type nanDynamics struct{}

func (nanDynamics) Derivative(robot.Pose, robot.Actuation) robot.Pose {
	return robot.Pose{X: math.NaN()}
}
