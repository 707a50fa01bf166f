// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package affinity pins benchmark endpoint goroutines to CPUs so that
// producer/consumer cache line traffic is measured between fixed cores.
// Platform-specific implementations are guarded by build tags.
package affinity

// Pin binds the calling OS thread to the given logical CPU. The caller
// must have locked the goroutine to its thread with
// runtime.LockOSThread first. Returns an error on unsupported
// platforms.
func Pin(cpu int) error {
	return pin(cpu)
}
