package scene

// Interpolation is an animation sampler's keyframe interpolation mode.
type Interpolation string

// Interpolation mode constants
const (
	InterpolationLinear      Interpolation = "LINEAR"
	InterpolationStep        Interpolation = "STEP"
	InterpolationCubicSpline Interpolation = "CUBICSPLINE"
)

// TargetPath is the node property an animation channel drives.
type TargetPath string

// Target path constants
const (
	PathTranslation TargetPath = "translation"
	PathRotation    TargetPath = "rotation"
	PathScale       TargetPath = "scale"
	PathWeights     TargetPath = "weights"
)

// AnimationSampler is one keyframe track: input times, output values, and
// the interpolation mode between keys.
type AnimationSampler struct {
	// Input is the keyframe time accessor (scalar float seconds).
	Input *Accessor

	// Output is the keyframe value accessor.
	Output *Accessor

	// Interpolation is the keyframe interpolation mode. Default LINEAR.
	Interpolation Interpolation
}

// AnimationChannel binds a sampler to an animated node property.
type AnimationChannel struct {
	// Sampler is the keyframe track feeding this channel.
	Sampler *AnimationSampler

	// Node is the target node. Nil when the channel targets no node.
	Node *Node

	// Path is the animated property.
	Path TargetPath
}

// Animation is a named group of samplers and channels.
type Animation struct {
	// Name is an optional name.
	Name string

	// Samplers are the animation's keyframe tracks in declaration order.
	Samplers []*AnimationSampler

	// Channels bind the tracks to node properties.
	Channels []*AnimationChannel
}
