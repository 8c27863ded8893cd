// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"fmt"

	"github.com/tx2pack/tx2pack/lib/snaperr"
)

func inconsistentComponentErr(id ComponentId) error {
	return snaperr.New(snaperr.KindSerialization,
		fmt.Sprintf("component %q has both typed and opaque payloads across entities", string(id)))
}

func inconsistentFieldSetErr() error {
	return snaperr.New(snaperr.KindSerialization, "entity's field set does not match the component's established schema")
}

func inconsistentFieldTypeErr(field string) error {
	return snaperr.New(snaperr.KindSerialization,
		fmt.Sprintf("field %q has a type that differs from the component's established schema", field))
}
