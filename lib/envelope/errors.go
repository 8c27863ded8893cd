// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"fmt"

	"github.com/tx2pack/tx2pack/lib/snaperr"
	"github.com/tx2pack/tx2pack/lib/snapshot"
)

func headerTooShortErr(got int) error {
	return snaperr.New(snaperr.KindInvalidFormat, fmt.Sprintf("envelope is %d bytes, shorter than the %d-byte header", got, snapshot.HeaderSize))
}

func invalidMagicErr() error {
	return snaperr.New(snaperr.KindInvalidFormat, "magic number does not match tx2pack's envelope signature")
}

func versionMismatchErr(actual uint32) error {
	return snaperr.VersionMismatch(snapshot.FormatVersion, actual)
}
