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

package buildinfo

import "testing"

func TestTestingLinked(t *testing.T) {
	if !TestingLinked() {
		t.Error("TestingLinked() = false when running under go test; want true")
	}
}

func TestSummaryDefaultsToUnknown(t *testing.T) {
	oldVersion, oldGit := Version, GitInfo
	defer func() { Version, GitInfo = oldVersion, oldGit }()

	Version, GitInfo = "", ""
	if got := Summary(); got != "unknown" {
		t.Fatalf("got %q, want %q", got, "unknown")
	}

	Version = "1.0"
	if got := Summary(); got != "1.0" {
		t.Fatalf("got %q, want %q", got, "1.0")
	}

	GitInfo = "abc123"
	if got := Summary(); got != "1.0, abc123" {
		t.Fatalf("got %q, want %q", got, "1.0, abc123")
	}
}
