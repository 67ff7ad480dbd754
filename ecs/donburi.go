package ecs

import (
	"github.com/phanxgames/shadows"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// FrameEventType is the Donburi event type for shadow frame stats.
var FrameEventType = events.NewEventType[shadows.FrameStats]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Frame stats
// are published to FrameEventType and can be consumed with events.Subscribe
// and ProcessEvents.
func NewDonburiSink(world donburi.World) shadows.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) OnFrame(stats shadows.FrameStats) {
	FrameEventType.Publish(s.world, stats)
}
