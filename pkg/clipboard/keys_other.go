//go:build !linux && !darwin

package clipboard

// PlatformCapturer is not implemented on this platform.
func PlatformCapturer() (CapturerFunc, error) {
	return nil, ErrUnsupported
}
