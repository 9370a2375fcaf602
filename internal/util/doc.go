// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the tutor packages.
//
// # Key Functions
//
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, StringWidth, PadRight: terminal-column aware helpers
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - ExpandHome: resolves a leading ~ in user supplied paths
package util
