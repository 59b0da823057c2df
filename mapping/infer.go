package mapping

import "strings"

// vendor substring patterns checked in order; first match wins.
var sourcePatterns = []struct {
	substr string
	source SurveySource
}{
	{"mgma", SourceMGMA},
	{"sullivan", SourceSullivanCotter},
	{"sullivancotter", SourceSullivanCotter},
	{"gallagher", SourceGallagher},
	{"ecg", SourceECG},
	{"amga", SourceAMGA},
}

// InferSurveySource guesses the originating survey vendor from a raw label
// or file/column hint by substring matching. Best-effort presentation
// nicety: promotion of learned mappings uses it only when the label's real
// source is not present in the current snapshot. Falls back to Custom.
func InferSurveySource(hint string) SurveySource {
	lowered := strings.ToLower(hint)
	for _, p := range sourcePatterns {
		if strings.Contains(lowered, p.substr) {
			return p.source
		}
	}
	return SourceCustom
}
