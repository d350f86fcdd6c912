// Package dataset indexes and queries the robustness benchmark dataset: a
// read-only directory of per-(data, key, measure) JSON result files plus one
// meta.json manifest describing the evaluated NAS-Bench-201 architectures.
package dataset

// Dataset names as they appear in the directory layout and result files.
const (
	DataCIFAR10    = "cifar10"
	DataCIFAR100   = "cifar100"
	DataImageNet16 = "ImageNet16-120"
)

// Measure names as they appear in result file names and payloads.
const (
	MeasureAccuracy   = "accuracy"
	MeasureConfidence = "confidence"
	MeasureCM         = "cm"
)

var allData = []string{DataCIFAR10, DataCIFAR100, DataImageNet16}

var keysClean = []string{"clean"}

var keysAdv = []string{
	"aa_apgd-ce@Linf",
	"aa_square@Linf",
	"fgsm@Linf",
	"pgd@Linf",
}

var keysCC = []string{
	"brightness",
	"contrast",
	"defocus_blur",
	"elastic_transform",
	"fog",
	"frost",
	"gaussian_noise",
	"glass_blur",
	"impulse_noise",
	"jpeg_compression",
	"motion_blur",
	"pixelate",
	"shot_noise",
	"snow",
	"zoom_blur",
}

var allMeasures = []string{MeasureAccuracy, MeasureConfidence, MeasureCM}

var ccSet = func() map[string]bool {
	m := make(map[string]bool, len(keysCC))
	for _, k := range keysCC {
		m[k] = true
	}
	return m
}()

// AllData returns the dataset names, in evaluation order.
func AllData() []string { return clone(allData) }

// KeysClean returns the single clean-evaluation key.
func KeysClean() []string { return clone(keysClean) }

// KeysAdv returns the adversarial attack keys.
func KeysAdv() []string { return clone(keysAdv) }

// KeysCC returns the common-corruption keys.
func KeysCC() []string { return clone(keysCC) }

// AllKeys returns every evaluation key: clean, adversarial, corruption.
func AllKeys() []string {
	out := make([]string, 0, len(keysClean)+len(keysAdv)+len(keysCC))
	out = append(out, keysClean...)
	out = append(out, keysAdv...)
	out = append(out, keysCC...)
	return out
}

// AllMeasures returns the measure names.
func AllMeasures() []string { return clone(allMeasures) }

// IsCorruptionKey reports whether key is a common-corruption key.
func IsCorruptionKey(key string) bool { return ccSet[key] }

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
