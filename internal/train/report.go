package train

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ClassMetrics holds per-disease evaluation metrics on the held-out
// test split.
type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// LabelCount is one disease label with its row count in the dataset.
type LabelCount struct {
	Label string
	Count int
}

// Report summarizes a completed training run.
type Report struct {
	TrainedAt        time.Time
	TrainingSamples  int
	TestSamples      int
	FeatureCount     int
	DiseaseCount     int
	AvgSymptomTokens float64
	TopDiseases      []LabelCount
	Accuracy         float64
	PerClass         map[string]ClassMetrics
	CVScores         []float64
	CVSkipped        bool
	CVSkipReason     string
}

// CVMean returns the mean cross-validation accuracy, or 0 if
// cross-validation was skipped.
func (r *Report) CVMean() float64 {
	if len(r.CVScores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range r.CVScores {
		sum += s
	}
	return sum / float64(len(r.CVScores))
}

// String renders the report as a plain-text table suitable for logs
// and the on-disk training report.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Training report (%s)\n", r.TrainedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "  training samples: %d\n", r.TrainingSamples)
	fmt.Fprintf(&b, "  test samples:     %d\n", r.TestSamples)
	fmt.Fprintf(&b, "  features:         %d\n", r.FeatureCount)
	fmt.Fprintf(&b, "  diseases:         %d\n", r.DiseaseCount)
	fmt.Fprintf(&b, "  avg tokens/row:   %.1f\n", r.AvgSymptomTokens)
	fmt.Fprintf(&b, "  accuracy:         %.4f\n", r.Accuracy)
	if r.CVSkipped {
		fmt.Fprintf(&b, "  cross-validation: skipped (%s)\n", r.CVSkipReason)
	} else {
		fmt.Fprintf(&b, "  cross-validation: %.4f mean over %d folds\n", r.CVMean(), len(r.CVScores))
	}

	labels := make([]string, 0, len(r.PerClass))
	for label := range r.PerClass {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	if len(r.TopDiseases) > 0 {
		b.WriteString("\n  most frequent diseases:\n")
		for _, lc := range r.TopDiseases {
			fmt.Fprintf(&b, "    %-40s %d\n", lc.Label, lc.Count)
		}
	}

	b.WriteString("\n  per-class metrics (precision / recall / f1 / support):\n")
	for _, label := range labels {
		m := r.PerClass[label]
		fmt.Fprintf(&b, "    %-40s %.3f / %.3f / %.3f / %d\n", label, m.Precision, m.Recall, m.F1, m.Support)
	}
	return b.String()
}

// datasetStats summarizes the preprocessed rows: mean token count of the
// normalized text and the topN most frequent disease labels, count
// descending with lexicographic tie-break.
func datasetStats(rows []NormalizedRecord, topN int) (avgLen float64, top []LabelCount) {
	if len(rows) == 0 {
		return 0, nil
	}

	var totalTokens int
	counts := make(map[string]int)
	for _, r := range rows {
		totalTokens += len(strings.Fields(r.CleanedText))
		counts[r.DiseaseLabel]++
	}
	avgLen = float64(totalTokens) / float64(len(rows))

	top = make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		top = append(top, LabelCount{Label: label, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Label < top[j].Label
	})
	if len(top) > topN {
		top = top[:topN]
	}
	return avgLen, top
}

// classificationReport computes precision, recall, and F1 per label
// from parallel slices of true and predicted labels.
func classificationReport(truth, predicted []string) map[string]ClassMetrics {
	type counts struct {
		tp, fp, fn int
	}
	byLabel := make(map[string]*counts)
	get := func(label string) *counts {
		c, ok := byLabel[label]
		if !ok {
			c = &counts{}
			byLabel[label] = c
		}
		return c
	}

	for i := range truth {
		if predicted[i] == truth[i] {
			get(truth[i]).tp++
		} else {
			get(predicted[i]).fp++
			get(truth[i]).fn++
		}
	}

	report := make(map[string]ClassMetrics, len(byLabel))
	for label, c := range byLabel {
		var precision, recall, f1 float64
		if c.tp+c.fp > 0 {
			precision = float64(c.tp) / float64(c.tp+c.fp)
		}
		if c.tp+c.fn > 0 {
			recall = float64(c.tp) / float64(c.tp+c.fn)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		report[label] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   c.tp + c.fn,
		}
	}
	return report
}
