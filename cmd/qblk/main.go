/*
Copyright 2024 The QuarXTor Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Command qblk is a small inspection and population tool for a QuarXTor
// block log: it can append blocks of every kind, read one back, compute
// an object's reachable-set closure, and verify a store's integrity.
package main

import (
	"log"

	"quarxtor.org/core/pkg/cmdmain"
)

func main() {
	log.SetFlags(0)
	cmdmain.Main()
}
