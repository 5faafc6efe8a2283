// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package keylookup

import "fmt"

func errKeyRange(r Range) error {
	return fmt.Errorf("keylookup: range [%#x,%#x] has KeyMin > KeyMax", r.KeyMin, r.KeyMax)
}

func errOverlap(a, b Range) error {
	return fmt.Errorf("keylookup: ranges [%#x,%#x] and [%#x,%#x] overlap or are mis-sorted",
		a.KeyMin, a.KeyMax, b.KeyMin, b.KeyMax)
}
