// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"

	"github.com/tx2pack/tx2pack/lib/snaperr"
	"github.com/tx2pack/tx2pack/lib/snapshot"
)

func unsupportedFormatErr(format snapshot.Format) error {
	return snaperr.New(snaperr.KindSerialization, fmt.Sprintf("unsupported format %q", format.String()))
}

func serializationErr(message string, err error) error {
	return snaperr.Wrap(snaperr.KindSerialization, message, err)
}

func deserializationErr(message string, err error) error {
	return snaperr.Wrap(snaperr.KindDeserialization, message, err)
}
