// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"log/slog"

	"github.com/gogpu/blendpack/internal/logging"
)

// slogger returns the shared blendpack logger.
func slogger() *slog.Logger { return logging.Logger() }
