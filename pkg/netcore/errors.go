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

package netcore

import "github.com/pkg/errors"

// Sentinel errors for the network frame layer. Io errors from an actual
// transport are expected to be wrapped with github.com/pkg/errors by
// whatever transport eventually implements one; this package only defines
// the frame/capability-level failures it can itself detect.
var (
	ErrInvalidFrame        = errors.New("netcore: invalid frame")
	ErrUnsupportedVersion  = errors.New("netcore: unsupported protocol version")
	ErrCapabilityMismatch  = errors.New("netcore: capability mismatch")
	ErrDecode              = errors.New("netcore: decode error")
	ErrEncode              = errors.New("netcore: encode error")
)
