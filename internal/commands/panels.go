package commands

import (
	"errors"
	"flag"
	"fmt"

	"sphere-panels/internal/world"
)

// ErrRejected is returned when the view does not accept a command in its current state.
var ErrRejected = errors.New("rejected")

// Target is what the panel commands drive; *session.Session satisfies it.
type Target interface {
	Select(ref world.Ref) bool
	Escape() bool
	Tune(damping, sensitivity float64)
	State() string
}

// RegisterPanels adds select, overview, tune and state. Output lines go to out.
func RegisterPanels(r *Registry, t Target, out func(string)) {
	r.Register("select", "select -body B -panel P", func(fs *flag.FlagSet) func() error {
		body := fs.Int("body", 0, "body index")
		panel := fs.Int("panel", -1, "panel index")
		return func() error {
			if *panel < 0 {
				return fmt.Errorf("select: -panel is required")
			}
			ref := world.Ref{Body: *body, Panel: *panel}
			if !t.Select(ref) {
				return fmt.Errorf("select %d/%d in %s: %w", ref.Body, ref.Panel, t.State(), ErrRejected)
			}
			out(fmt.Sprintf("selected body %d panel %d", ref.Body, ref.Panel))
			return nil
		}
	})
	r.Register("overview", "overview", func(fs *flag.FlagSet) func() error {
		return func() error {
			if !t.Escape() {
				return fmt.Errorf("overview from %s: %w", t.State(), ErrRejected)
			}
			return nil
		}
	})
	r.Register("tune", "tune -damping D -sensitivity S", func(fs *flag.FlagSet) func() error {
		damping := fs.Float64("damping", 0, "inertia damping in (0, 1)")
		sens := fs.Float64("sensitivity", 0, "rotation radians per pixel")
		return func() error {
			if *damping == 0 && *sens == 0 {
				return fmt.Errorf("tune: nothing to change")
			}
			if *damping != 0 && (*damping <= 0 || *damping >= 1) {
				return fmt.Errorf("tune: damping %g not in (0, 1)", *damping)
			}
			if *sens < 0 {
				return fmt.Errorf("tune: sensitivity %g", *sens)
			}
			t.Tune(*damping, *sens)
			out(fmt.Sprintf("tuned damping=%g sensitivity=%g", *damping, *sens))
			return nil
		}
	})
	r.Register("state", "state", func(fs *flag.FlagSet) func() error {
		return func() error {
			out(t.State())
			return nil
		}
	})
	r.Register("help", "help", func(fs *flag.FlagSet) func() error {
		return func() error {
			for _, n := range r.Names() {
				out("cmd " + r.cmds[n].Help)
			}
			return nil
		}
	})
}
