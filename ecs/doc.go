// Package ecs provides ECS adapters for the shadows pipeline.
//
// The primary adapter is [NewDonburiSink], which publishes the stats of every
// shadow frame (members captured, lights rendered, pass timings) into a
// [Donburi] world as typed events. Subscribe to [FrameEventType] in your ECS
// systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	pipeline.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
