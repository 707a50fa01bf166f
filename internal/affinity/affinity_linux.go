// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package affinity

import "golang.org/x/sys/unix"

func pin(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	// Pid 0 targets the calling thread.
	return unix.SchedSetaffinity(0, &set)
}
