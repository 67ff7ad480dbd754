// Package shadows adds per-pixel 2D shadows and soft lighting to an
// [Ebitengine] scene graph.
//
// Members of the scene are tagged as casters (they block light), overlays
// (they are drawn atop shadows and lit on their own) or lights. Each frame
// the pipeline captures the casters and overlays into offscreen targets,
// encodes for every light a radial depth map of the nearest caster at each
// angle, turns it into a light-intensity mask around the light and merges
// all masks into one composite. A screen filter then darkens the drawn scene
// outside the composite:
//
//	final = scene * (ambient + (1-ambient) * mask)
//
// Soft penumbras come from averaging several scatter samples spread around
// each light center.
//
// # Quick start
//
// [New] creates a GPU pipeline and installs it on a [Scene]:
//
//	scene := shadows.NewScene()
//	fx, err := shadows.New(scene, shadows.DefaultConfig(800, 500))
//	// ...
//	caster := shadows.NewSprite("wall", wallImage)
//	caster.Tag = shadows.TagCaster
//	scene.Root().AddChild(caster)
//
//	light := shadows.NewLightNode("torch", shadows.NewLight(700, 1))
//	light.SetPosition(450, 150)
//	scene.Root().AddChild(light)
//
// Then call [Scene.Update] and [Scene.Draw] from your [ebiten.Game].
//
// # Renderers
//
// [EbitenRenderer] runs the passes as Kage shaders. [SoftRenderer] runs the
// same math on the CPU with golang.org/x/image and can be read back; use it
// in tests and to dump the intermediate layers with [SoftRenderer.Dump].
// Both plug into [Pipeline], which can also be driven without a Scene by
// filling [Buckets] and calling [Pipeline.RunFrame].
//
// # Logging
//
// The package logs nothing by default. Pass a *slog.Logger to [SetLogger]
// to see clamped configuration (warn) and per-frame pass details (debug).
//
// [Ebitengine]: https://ebitengine.org
package shadows
