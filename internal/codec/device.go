package codec

// Device names the compute backend a pipeline runs on. The choice is made
// once per invocation and applies to every codec call in that run.
type Device string

const (
	// DeviceCPU is the default compute backend.
	DeviceCPU Device = "cpu"
	// DeviceCUDA is the accelerated backend, used only when requested and
	// reported available by the capability.
	DeviceCUDA Device = "cuda"
)

// Select resolves the effective device: accelerated compute is used only if
// it was requested and the capability reports it available.
func Select(requested, available bool) Device {
	if requested && available {
		return DeviceCUDA
	}
	return DeviceCPU
}
