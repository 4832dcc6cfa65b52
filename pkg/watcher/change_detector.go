package watcher

import "github.com/ritzau/mindmap-layout/pkg/config"

// ChangeAnalysis describes which config sections changed between two
// loads, split by whether a running session can pick them up.
type ChangeAnalysis struct {
	Applied     []string // tuning the session applies in place
	NeedRestart []string // sections read only at startup
}

// Changed reports whether anything differs.
func (a *ChangeAnalysis) Changed() bool {
	return len(a.Applied) > 0 || len(a.NeedRestart) > 0
}

// AnalyzeChanges compares the configuration before and after a reload.
func AnalyzeChanges(old, cur *config.Config) *ChangeAnalysis {
	a := &ChangeAnalysis{}

	tuning := func(name string, changed bool) {
		if changed {
			a.Applied = append(a.Applied, name)
		}
	}
	tuning("placement", old.Placement != cur.Placement)
	tuning("simulation", old.Simulation != cur.Simulation)
	tuning("camera", old.Camera != cur.Camera)
	tuning("history", old.History != cur.History)

	restart := func(name string, changed bool) {
		if changed {
			a.NeedRestart = append(a.NeedRestart, name)
		}
	}
	restart("server", old.Server != cur.Server)
	restart("viewport", old.Viewport != cur.Viewport)
	restart("suggest", old.Suggest != cur.Suggest)
	restart("log", old.Log != cur.Log)
	restart("watch", old.Watch != cur.Watch)

	return a
}
