// Package compositor is the output-rendering and frame-scheduling core of a
// nested display compositor.
//
// # Overview
//
// A Session owns one buffer allocator, one renderer and the registry of
// outputs. Each output is shown in a window of the host the session runs
// inside (another display server, a terminal, or nothing at all) and is
// bound to a Surface: the host window, a small chain of buffers, a damage
// tracker keyed by buffer age and the frame scheduling state.
//
// # Quick Start
//
//	cfg := config.Default()
//	h := headless.New()
//	sess, err := compositor.New(cfg, h, render.NewSoftware(scene))
//	if err != nil {
//	    return err // no allocator could be initialized
//	}
//	defer sess.Shutdown()
//
//	if _, err := sess.AddWindow("compositor"); err != nil {
//	    return err
//	}
//	return sess.Run(ctx)
//
// # Allocator Selection
//
// New tries the configured backends in order ("vulkan", then "software" by
// default) and keeps the first allocator that initializes. Failures of
// earlier candidates are logged and skipped. The choice never changes for
// the lifetime of the session.
//
// # Frame Scheduling
//
// Damage, resizes, input and screen filter changes mark an output dirty.
// The first invalidation signals the output's wake; any further ones before
// it is serviced coalesce into the same frame. After a frame is submitted
// the output stays pending until the host reports the presentation
// complete, at which point a frame that became due in the meantime is
// scheduled immediately.
//
// A frame renders only the region the damage tracker derives from the age
// of the acquired buffer. When composition or submission fails the buffer
// chain and the damage history are reset, the failure is logged and handed
// to Shell.FrameFailed as a *RenderError, and the session goes on. A failed frame does not schedule a
// retry by itself.
//
// # Threading
//
// A Session is not safe for concurrent use. Run makes the calling goroutine
// the control goroutine; other goroutines hand work to it with Post.
package compositor
