package controllers_test

import (
	"context"
	"encoding/json"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mowsim/internal/controllers"
	"github.com/san-kum/mowsim/internal/geom"
	"github.com/san-kum/mowsim/internal/integrators"
	"github.com/san-kum/mowsim/internal/robot"
	"github.com/san-kum/mowsim/internal/sim"
)

const dt = 10 * time.Millisecond

func input(length sim.Length, instructions ...robot.Instruction) sim.Input {
	return sim.Input{
		Instructions: instructions,
		SimLength:    length,
		DeltaTime:    sim.Dur(dt),
		Physical:     robot.DefaultPhysical(),
	}
}

func runWaypoint(in sim.Input) *sim.Output[controllers.State] {
	s := sim.New[controllers.State](integrators.NewEuler(), controllers.NewWaypoint(controllers.DefaultParams()))
	out, err := s.Run(context.Background(), in)
	Expect(err).NotTo(HaveOccurred())
	return out
}

func readback(p robot.Pose) sim.Readback {
	return sim.Readback{Pose: p, Physical: robot.DefaultPhysical()}
}

var _ = Describe("Waypoint", func() {
	var ctrl *controllers.Waypoint

	BeforeEach(func() {
		ctrl = controllers.NewWaypoint(controllers.DefaultParams())
	})

	Describe("Initialize", func() {
		It("starts idle and says so", func() {
			debug, state := ctrl.Initialize([]robot.Instruction{robot.NewBladeOn()})
			Expect(debug.Messages).To(Equal([]string{"Robot Initialized"}))
			Expect(debug.Renderables).To(BeEmpty())
			Expect(state.Kind).To(Equal(controllers.Idle))
			Expect(ctrl.Remaining()).To(Equal(1))
		})

		It("does not alias the caller's script", func() {
			script := []robot.Instruction{robot.NewBladeOn(), robot.NewBladeOff()}
			ctrl.Initialize(script)
			ctrl.Step(dt, readback(robot.Pose{}))
			Expect(script[0].Kind()).To(Equal(robot.BladeOn))
			Expect(ctrl.Remaining()).To(Equal(1))
		})
	})

	Describe("Step", func() {
		It("ends when the queue is empty", func() {
			ctrl.Initialize(nil)
			in := readback(robot.Pose{})
			in.Actuation = robot.Actuation{MotorLeft: 0.4, MotorRight: -0.2, BladeOn: true}

			step := ctrl.Step(dt, in)

			Expect(step.End).To(BeTrue())
			Expect(step.Debug.Messages).To(Equal([]string{"No instructions remaining"}))
			Expect(step.Actuation).To(Equal(robot.Actuation{BladeOn: true}))
			Expect(step.State.Kind).To(Equal(controllers.Idle))
		})

		It("applies blade commands within the same tick", func() {
			ctrl.Initialize([]robot.Instruction{robot.NewBladeOn()})

			step := ctrl.Step(dt, readback(robot.Pose{}))

			Expect(step.End).To(BeFalse())
			Expect(step.Actuation.BladeOn).To(BeTrue())
			Expect(step.State.Kind).To(Equal(controllers.Idle))
			Expect(step.Debug.Messages).To(Equal([]string{"Steps since last idle: 0"}))
		})

		It("drives straight at a target dead ahead", func() {
			ctrl.Initialize([]robot.Instruction{robot.NewGotoPoint(5, 0)})

			step := ctrl.Step(dt, readback(robot.Pose{}))

			Expect(step.Actuation.MotorLeft).To(BeNumerically("~", 1, 1e-12))
			Expect(step.Actuation.MotorRight).To(BeNumerically("~", 1, 1e-12))
			Expect(step.State.Kind).To(Equal(controllers.GotoPoints))
			Expect(step.State.Points).To(Equal([]geom.Point{geom.Pt(5, 0)}))
			Expect(step.Debug.Messages).To(Equal([]string{
				"Steps since last idle: 0",
				"Robot Position: (0.000, 0.000)",
				"Robot Angle: 0.0",
				"Target point: (5.00, 0.00)",
				"Distance to target: 5.0000",
				"Angle error to target: 0.0",
				"Left Motor Power: +1.00",
				"Right Motor Power: +1.00",
			}))
			Expect(step.Debug.Renderables).To(Equal([]string{
				"Line((5.0, 0.0), (0.0, 0.0), 4, (255, 0, 0))",
			}))
		})

		It("turns in place toward a target off to the side", func() {
			ctrl.Initialize([]robot.Instruction{robot.NewGotoPoint(0, 1)})

			step := ctrl.Step(dt, readback(robot.Pose{}))

			Expect(step.Actuation.MotorRight).To(BeNumerically("~", 1/1.5, 1e-12))
			Expect(step.Actuation.MotorLeft).To(BeNumerically("~", -1/1.5, 1e-12))
		})

		It("turns the short way across the angle seam", func() {
			ctrl.Initialize([]robot.Instruction{robot.NewGotoPoint(-1, -0.1)})

			// the heading has wound up several full turns
			step := ctrl.Step(dt, readback(robot.Pose{Theta: math.Pi - 0.2 + 6*math.Pi}))

			Expect(step.Actuation.MotorRight).To(BeNumerically(">", 0))
			Expect(step.Actuation.MotorLeft).To(BeNumerically("<", 0))
		})

		It("counts steps since the last idle tick", func() {
			ctrl.Initialize([]robot.Instruction{robot.NewGotoPoint(5, 0)})
			ctrl.Step(dt, readback(robot.Pose{}))
			ctrl.Step(dt, readback(robot.Pose{}))
			step := ctrl.Step(dt, readback(robot.Pose{}))
			Expect(step.Debug.Messages[0]).To(Equal("Steps since last idle: 2"))
		})

		It("expands a line into its two endpoints", func() {
			ctrl.Initialize([]robot.Instruction{robot.NewLine(geom.Pt(1, 1), geom.Pt(2, 2))})
			step := ctrl.Step(dt, readback(robot.Pose{}))
			Expect(step.State.Points).To(Equal([]geom.Point{geom.Pt(1, 1), geom.Pt(2, 2)}))
		})

		It("samples a bezier curve", func() {
			ctrl.Initialize([]robot.Instruction{
				robot.NewCubicBezier(geom.Pt(1, 0), geom.Pt(2, 1), geom.Pt(3, -1), geom.Pt(4, 0)),
			})
			step := ctrl.Step(dt, readback(robot.Pose{}))
			Expect(step.State.Points).To(HaveLen(100))
			Expect(step.State.Points[0]).To(Equal(geom.Pt(1, 0)))
		})

		It("pops a waypoint once it is within reach", func() {
			ctrl.Initialize([]robot.Instruction{robot.NewLine(geom.Pt(0.05, 0), geom.Pt(3, 0))})

			step := ctrl.Step(dt, readback(robot.Pose{}))

			Expect(step.State.Points).To(Equal([]geom.Point{geom.Pt(3, 0)}))
		})

		It("keeps the motors running for the tick after the last waypoint", func() {
			ctrl.Initialize([]robot.Instruction{robot.NewGotoPoint(0.05, 0)})
			first := ctrl.Step(dt, readback(robot.Pose{}))
			Expect(first.State.Points).To(BeEmpty())

			in := readback(robot.Pose{X: 0.01})
			in.Actuation = first.Actuation
			second := ctrl.Step(dt, in)

			Expect(second.State.Kind).To(Equal(controllers.Idle))
			Expect(second.Actuation).To(Equal(first.Actuation))
			Expect(second.End).To(BeFalse())
		})
	})

	Describe("in the harness", func() {
		It("reaches a target straight ahead", func() {
			out := runWaypoint(input(sim.RunSteps(2000), robot.NewGotoPoint(5, 0)))

			final := out.Final()
			Expect(final.Pose().Position().Dist(geom.Pt(5, 0))).To(BeNumerically("<", 0.1))
			Expect(final.RobotY).To(Equal(0.0))
			Expect(final.Control.Kind).To(Equal(controllers.Idle))
		})

		It("reaches a target that needs a turn first", func() {
			out := runWaypoint(input(sim.RunSteps(3000), robot.NewGotoPoint(0, 3)))

			final := out.Final()
			Expect(final.Pose().Position().Dist(geom.Pt(0, 3))).To(BeNumerically("<", 0.1))
			Expect(final.Control.Kind).To(Equal(controllers.Idle))
		})

		It("stops after one tick with nothing to do", func() {
			out := runWaypoint(input(sim.RunIndefinitely()))

			Expect(out.States).To(HaveLen(2))
			Expect(out.Final().Pose()).To(Equal(robot.Pose{}))
		})

		It("runs exactly the requested number of steps", func() {
			out := runWaypoint(input(sim.RunSteps(10)))
			Expect(out.States).To(HaveLen(11))
		})

		It("toggles the blade one tick at a time", func() {
			out := runWaypoint(input(sim.RunSteps(2), robot.NewBladeOn(), robot.NewBladeOff()))

			Expect(out.States).To(HaveLen(3))
			Expect(out.States[0].BladeOn).To(BeFalse())
			Expect(out.States[1].BladeOn).To(BeTrue())
			Expect(out.States[2].BladeOn).To(BeFalse())
		})

		It("keeps the blade on while driving", func() {
			out := runWaypoint(input(sim.RunIndefinitely(),
				robot.NewBladeOn(), robot.NewGotoPoint(1, 0), robot.NewBladeOff()))

			Expect(out.States[1].BladeOn).To(BeTrue())
			Expect(out.States[len(out.States)/2].BladeOn).To(BeTrue())
			Expect(out.Final().BladeOn).To(BeFalse())
			Expect(out.Final().Debug.Messages).To(Equal([]string{"No instructions remaining"}))
		})

		It("is deterministic", func() {
			script := []robot.Instruction{
				robot.NewBladeOn(),
				robot.NewCubicBezier(geom.Pt(0, 0), geom.Pt(2, 2), geom.Pt(4, -2), geom.Pt(6, 0)),
				robot.NewLine(geom.Pt(6, 1), geom.Pt(0, 1)),
			}
			a, err := json.Marshal(runWaypoint(input(sim.RunFor(5*time.Second), script...)))
			Expect(err).NotTo(HaveOccurred())
			b, err := json.Marshal(runWaypoint(input(sim.RunFor(5*time.Second), script...)))
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(Equal(b))
		})

		It("records the state after every tick", func() {
			out := runWaypoint(input(sim.RunSteps(1), robot.NewGotoPoint(5, 0)))

			Expect(out.States[0].Control.Kind).To(Equal(controllers.Idle))
			Expect(out.States[0].Debug.Messages).To(Equal([]string{"Robot Initialized"}))
			Expect(out.States[1].Control.Kind).To(Equal(controllers.GotoPoints))
		})
	})

	Context("with PID steering", func() {
		It("reaches the target", func() {
			pid := controllers.NewPID(4, 0.1, 0.05)
			s := sim.New[controllers.State](integrators.NewEuler(),
				controllers.NewPIDWaypoint(controllers.DefaultParams(), pid))

			out, err := s.Run(context.Background(), input(sim.RunSteps(3000), robot.NewGotoPoint(2, 2)))

			Expect(err).NotTo(HaveOccurred())
			Expect(out.Final().Pose().Position().Dist(geom.Pt(2, 2))).To(BeNumerically("<", 0.1))
		})
	})
})

var _ = Describe("Manual", func() {
	It("drains one instruction per tick at constant power", func() {
		s := sim.New[int](integrators.NewEuler(), controllers.NewManual(1, 0.5))

		out, err := s.Run(context.Background(), input(sim.RunIndefinitely(),
			robot.NewBladeOn(), robot.NewGotoPoint(1, 1), robot.NewGotoPoint(2, 2)))

		Expect(err).NotTo(HaveOccurred())
		Expect(out.States).To(HaveLen(5))
		Expect(out.States[0].Control).To(Equal(3))
		Expect(out.States[1].BladeOn).To(BeTrue())
		Expect(out.States[1].Control).To(Equal(2))
		Expect(out.Final().MotorLeft).To(Equal(1.0))
		Expect(out.Final().MotorRight).To(Equal(0.5))
		Expect(out.Final().RobotTheta).To(BeNumerically("<", 0))
	})
})

var _ = Describe("None", func() {
	It("stops straight away", func() {
		s := sim.New[struct{}](integrators.NewEuler(), controllers.NewNone())

		out, err := s.Run(context.Background(), input(sim.RunIndefinitely(), robot.NewGotoPoint(1, 0)))

		Expect(err).NotTo(HaveOccurred())
		Expect(out.States).To(HaveLen(2))
		Expect(out.Final().Pose()).To(Equal(robot.Pose{}))
	})
})
