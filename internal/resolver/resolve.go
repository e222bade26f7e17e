package resolver

import "strings"

// Resolve maps a scanned payload to a Result for the given viewer.
//
// The order of checks is fixed: payload, record lookup, per-type destination,
// then program switch, then entitlement. A viewer on the wrong program who is
// also not entitled sees the switch prompt first; the purchase prompt is the
// switch's pending result.
func Resolve(payload string, records RecordSource, quizzes QuizSource, viewer Viewer) Result {
	id, err := ParsePayload(payload)
	if err != nil {
		return ResolutionError{Kind: MalformedPayload}
	}
	rec, ok := records.Record(id)
	if !ok {
		return ResolutionError{Kind: RecordNotFound, Detail: id}
	}

	switch r := rec.(type) {
	case AssistantRecord:
		dest := ShowDestination{
			Kind:       TypeShikhoAI,
			Program:    viewer.ActiveProgram,
			PromptText: r.PromptText,
			ImageURL:   r.ImageURL,
		}
		return gate(dest, viewer.ActiveProgram, viewer)
	case QuizLinkRecord:
		return resolveQuiz(r, quizzes, viewer)
	case MappedRecord:
		return resolveMapped(r, viewer)
	default:
		return ResolutionError{Kind: InvalidMapping, Detail: id}
	}
}

func resolveQuiz(r QuizLinkRecord, quizzes QuizSource, viewer Viewer) Result {
	quizID := r.QuizID
	if len(r.QuizMappings) > 0 {
		quizID = r.QuizMappings[0].QuizID
		for _, m := range r.QuizMappings {
			if m.ClassVal == viewer.Class {
				quizID = m.QuizID
				break
			}
		}
	}
	if quizID == "" {
		return ResolutionError{Kind: LinkedQuizNotFound, Detail: r.ID}
	}
	q, ok := quizzes.Quiz(quizID)
	if !ok {
		return ResolutionError{Kind: LinkedQuizNotFound, Detail: quizID}
	}

	target := q.Program
	if target == "" {
		target = viewer.ActiveProgram
	}
	dest := ShowDestination{
		Kind:      TypeQuiz,
		Program:   target,
		Phase:     q.Phase,
		Subject:   q.Subject,
		ChapterID: q.ChapterID,
		QuizID:    q.ID,
	}
	return gate(dest, target, viewer)
}

func resolveMapped(r MappedRecord, viewer Viewer) Result {
	t := r.Type
	if !t.UsesMappings() {
		t = TypeChapter
	}
	m, ok := SelectMapping(r.Mappings, viewer.Class)
	if !ok {
		return ResolutionError{Kind: InvalidMapping, Detail: r.ID + ": no mappings"}
	}

	d, missing := m.Destination(t)
	if len(missing) > 0 {
		return ResolutionError{Kind: InvalidMapping, Detail: r.ID + ": missing " + strings.Join(missing, ", ")}
	}
	if !t.Gated() {
		return d
	}
	return gate(d, d.Program, viewer)
}

// gate applies the program switch and entitlement checks to a destination.
func gate(dest ShowDestination, target string, viewer Viewer) Result {
	var settled Result = dest
	if !viewer.Entitlements.Full(target) {
		settled = RequirePurchase{RequiredProgram: target}
	}
	if target != viewer.ActiveProgram {
		return RequireProgramSwitch{TargetProgram: target, Pending: settled}
	}
	return settled
}

// SelectMapping returns the mapping for class, or the first mapping when no
// class matches. It reports false only for an empty list.
func SelectMapping(ms []Mapping, class string) (Mapping, bool) {
	if len(ms) == 0 {
		return Mapping{}, false
	}
	for _, m := range ms {
		if m.ClassVal == class {
			return m, true
		}
	}
	return ms[0], true
}

// Destination builds the destination for a record of type t from either the
// ready or the fallback fields, never a mix. The second return lists the
// required fields of the chosen set that are empty.
func (m Mapping) Destination(t Type) (ShowDestination, []string) {
	if m.IsContentReady {
		d := ShowDestination{
			Kind:      t,
			Program:   m.Program,
			Phase:     m.Phase,
			Subject:   m.Subject,
			ChapterID: m.ChapterID,
		}
		switch t {
		case TypeLectureClass:
			d.LectureClassID = m.LectureClassID
		case TypeLiveExam:
			d.LiveExamID = m.LiveExamID
		case TypeAnimatedVideo:
			d.TopicID = m.TopicID
		}
		return d, m.MissingReady(t)
	}

	d := ShowDestination{
		Kind:      t,
		Program:   m.FallbackProgram,
		Phase:     m.FallbackPhase,
		Subject:   m.FallbackSubject,
		ChapterID: m.FallbackChapterID,
	}
	switch t {
	case TypeLectureClass:
		d.LectureClassID = m.FallbackLectureClassID
	case TypeLiveExam:
		d.LiveExamID = m.FallbackLiveExamID
	}
	return d, m.MissingFallback(t)
}

// MissingReady lists the empty required ready-state fields for type t, by
// their JSON names.
func (m Mapping) MissingReady(t Type) []string {
	return missingFields(t, "", map[string]string{
		"program":        m.Program,
		"phase":          m.Phase,
		"subject":        m.Subject,
		"chapterId":      m.ChapterID,
		"lectureClassId": m.LectureClassID,
		"liveExamId":     m.LiveExamID,
	})
}

// MissingFallback lists the empty required fallback fields for type t.
func (m Mapping) MissingFallback(t Type) []string {
	return missingFields(t, "fallback", map[string]string{
		"program":        m.FallbackProgram,
		"phase":          m.FallbackPhase,
		"subject":        m.FallbackSubject,
		"chapterId":      m.FallbackChapterID,
		"lectureClassId": m.FallbackLectureClassID,
		"liveExamId":     m.FallbackLiveExamID,
	})
}

func missingFields(t Type, prefix string, values map[string]string) []string {
	var out []string
	for _, name := range requiredFields(t) {
		if strings.TrimSpace(values[name]) != "" {
			continue
		}
		if prefix != "" {
			name = prefix + strings.ToUpper(name[:1]) + name[1:]
		}
		out = append(out, name)
	}
	return out
}

func requiredFields(t Type) []string {
	switch t {
	case TypeAnimatedVideo:
		return []string{"subject", "chapterId"}
	case TypeLectureClass:
		return []string{"program", "phase", "subject", "chapterId", "lectureClassId"}
	case TypeLiveExam:
		return []string{"program", "phase", "subject", "chapterId", "liveExamId"}
	default:
		return []string{"program", "phase", "subject", "chapterId"}
	}
}
