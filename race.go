// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package ubq

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent tests: the endpoint protocol and the
// spinlocks synchronize through atomix operations whose happens-before
// edges the race detector cannot observe, producing false positives.
const RaceEnabled = true
