/*
Copyright © 2023 - 2026 uefikit authors

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

// Package errors defines the typed error surface of the boot manager core.
// Per-file parse failures are logged and swallowed by the parsers; everything
// else travels up through these types unchanged.
package errors

import (
	"errors"
	"fmt"
)

// Sentinels shared across packages.
var (
	// ErrNoDevicePathOrFile: a validator was invoked with neither a device
	// path nor an in-memory image.
	ErrNoDevicePathOrFile = errors.New("no device path or file buffer to authenticate")

	// ErrNoValidator: a security hook fired with no validator registered.
	ErrNoValidator = errors.New("no validator registered")

	// ErrOverrideInstalled: a second security override guard was requested
	// while one is still active.
	ErrOverrideInstalled = errors.New("security override already installed")

	// ErrConfigMissingHandle: a BootEfi entry carries no filesystem handle.
	ErrConfigMissingHandle = errors.New("boot entry has no filesystem handle")

	// ErrConfigMissingEfi: a BootEfi/BootTftp entry carries no image path.
	ErrConfigMissingEfi = errors.New("boot entry has no EFI image path")

	// ErrGuardConsumed: a devicetree guard was used after its allocation
	// was handed to the firmware.
	ErrGuardConsumed = errors.New("devicetree guard already consumed")

	// ErrUnsupported: an image was loaded as a driver but is not one.
	ErrUnsupported = errors.New("image is not a supported driver")

	// ErrVarNotFound: the requested variable does not exist in the store.
	ErrVarNotFound = errors.New("variable not found")
)

// BufTooSmallError reports a read into a caller-provided buffer that could not
// hold the file; Need is the file's reported size so the caller can retry with
// a heap buffer.
type BufTooSmallError struct {
	Need int
}

func (e *BufTooSmallError) Error() string {
	return fmt.Sprintf("buffer too small, %d bytes needed", e.Need)
}

// IsBufTooSmall unwraps err looking for a BufTooSmallError and returns the
// required size.
func IsBufTooSmall(err error) (int, bool) {
	var bts *BufTooSmallError
	if errors.As(err, &bts) {
		return bts.Need, true
	}
	return 0, false
}

// NotExistError reports a referenced path missing from the filesystem the
// entry claims to live on. Kind names what the path was for ("efi",
// "devicetree", ...).
type NotExistError struct {
	Kind string
	Path string
}

func (e *NotExistError) Error() string {
	return fmt.Sprintf("%s path %q does not exist", e.Kind, e.Path)
}

// NonMatchingArchError reports an entry built for a different architecture
// than the host.
type NonMatchingArchError struct {
	Want string
	Host string
}

func (e *NonMatchingArchError) Error() string {
	return fmt.Sprintf("entry architecture %q does not match host %q", e.Want, e.Host)
}

// InvalidValueError reports a typed-field constructor rejecting its input.
// Kind is one of "machine-id", "sort-key", "architecture", "path".
type InvalidValueError struct {
	Kind  string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Kind, e.Value)
}

// IPParseError reports a TFTP entry whose filename is not a dotted-quad IPv4
// server address.
type IPParseError struct {
	Value string
}

func (e *IPParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as an IPv4 address", e.Value)
}

// InvalidContentLengthError reports a network file whose announced size cannot
// be allocated or addressed.
type InvalidContentLengthError struct {
	Length int64
}

func (e *InvalidContentLengthError) Error() string {
	return fmt.Sprintf("invalid content length %d", e.Length)
}

// BCDError wraps a Windows BCD hive parse failure. Malformed hives must
// surface as this error, never as a panic.
type BCDError struct {
	Err error
}

func (e *BCDError) Error() string {
	return fmt.Sprintf("parsing BCD hive: %v", e.Err)
}

func (e *BCDError) Unwrap() error {
	return e.Err
}

// UKIError wraps a unified-kernel-image parse failure.
type UKIError struct {
	Path string
	Err  error
}

func (e *UKIError) Error() string {
	return fmt.Sprintf("parsing UKI %q: %v", e.Path, e.Err)
}

func (e *UKIError) Unwrap() error {
	return e.Err
}

// ExitError carries a process exit code up to the command front-end, in the
// same shape the rest of the CLI tooling uses.
type ExitError struct {
	err  string
	code int
}

func (e *ExitError) Error() string {
	return e.err
}

func (e *ExitError) ExitCode() int {
	return e.code
}

// NewExit generates an ExitError from a string.
func NewExit(err string, code int) error {
	return &ExitError{err: err, code: code}
}

// NewExitFromError generates an ExitError from an existing error, keeping its
// message.
func NewExitFromError(err error, code int) error {
	if err == nil {
		return nil
	}
	return &ExitError{err: err.Error(), code: code}
}
