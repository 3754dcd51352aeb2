// Package render rasterizes circle lists into RGBA frames.
//
// Two backends implement [Renderer]:
//
//   - GPU: instanced quads through a wgpu render pipeline, read back into
//     host memory
//   - CPU: software rasterization with gogpu/gg
//
// [New] picks one by [Kind]. With [KindAuto] the GPU is tried first and the
// CPU backend is used when no adapter is available:
//
//	r, err := render.New(render.KindAuto, 512, 512, maxParticles)
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//	pixels, err := r.Draw(circles)
//
// Every frame is width*height*4 bytes of row-major RGBA over an opaque black
// background. Circles are composited in slice order, later ones on top.
//
// Build with -tags nogpu to leave out the GPU backend.
package render
