// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package invariants exposes whether expensive self checks are compiled in.
// Build with -tags invariants (or -race) to enable them.
package invariants
