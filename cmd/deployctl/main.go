/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"os"

	"github.com/NVIDIA/deployctl/pkg/cli"
)

func main() {
	os.Exit(cli.Run())
}
