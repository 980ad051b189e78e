package prediction

import "strconv"

// Outcome labels, fixed by the training process of the classifier.
const (
	Dropout  = "Dropout"
	Enrolled = "Enrolled"
	Graduate = "Graduate"
)

// classIndexMap maps the classifier's output column to its label.
// It must match the artifact's class order exactly.
var classIndexMap = [...]string{
	0: Dropout,
	1: Enrolled,
	2: Graduate,
}

var icons = map[string]string{
	Dropout:  "😞",
	Enrolled: "➡️",
	Graduate: "🎉",
}

// Label returns the label of class index i, or false if i is unknown.
func Label(i int) (string, bool) {
	if i < 0 || i >= len(classIndexMap) {
		return "", false
	}
	return classIndexMap[i], true
}

// Labels returns the class labels in index order.
func Labels() []string {
	out := make([]string, len(classIndexMap))
	copy(out, classIndexMap[:])
	return out
}

// Icon returns the display icon for a label.
func Icon(label string) string {
	if icon, ok := icons[label]; ok {
		return icon
	}
	return "❓"
}

// displayLabel names a probability column, falling back for columns the
// index map does not know about.
func displayLabel(i int) string {
	if label, ok := Label(i); ok {
		return label
	}
	return "Class " + strconv.Itoa(i)
}
