package injection

import (
	"github.com/vaptprobe/vaptprobe/pkg/finding"
	"github.com/vaptprobe/vaptprobe/pkg/probe"
	"github.com/vaptprobe/vaptprobe/pkg/progress"
)

func progressEvent(res *probe.Result) progress.Event {
	return progress.Event{
		Category:  finding.CategoryInjection,
		Stage:     progress.StageRequest,
		Latency:   res.Latency,
		Transport: res.Failed(),
	}
}

func findingEvent(f *finding.Finding) progress.Event {
	return progress.Event{
		Category: finding.CategoryInjection,
		Stage:    progress.StageFinding,
		Finding:  f,
	}
}
