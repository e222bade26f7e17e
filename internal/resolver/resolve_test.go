package resolver

import (
	"reflect"
	"testing"
)

const (
	ap2026 = "SSC - AP 2026"
	ap2025 = "SSC - AP 2025"
)

func chapterRecord() MappedRecord {
	return MappedRecord{
		ID:   "qrid_1",
		Type: TypeChapter,
		Mappings: []Mapping{{
			ClassVal:       "c9",
			Program:        ap2026,
			Phase:          "Quarter 1",
			Subject:        "Physics",
			ChapterID:      "ch1",
			IsContentReady: true,
		}},
	}
}

func entitled(programs ...string) Entitlements {
	e := Entitlements{}
	for _, p := range programs {
		e[p] = AccessFull
	}
	return e
}

func TestResolve_ChapterReady(t *testing.T) {
	viewer := Viewer{Class: "c9", ActiveProgram: ap2026, Entitlements: entitled(ap2026)}
	got := Resolve("https://shikho.com/qr?id=qrid_1", Records{chapterRecord()}, Quizzes{}, viewer)

	want := ShowDestination{Kind: TypeChapter, Program: ap2026, Phase: "Quarter 1", Subject: "Physics", ChapterID: "ch1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestResolve_ProgramMismatchAsksForSwitch(t *testing.T) {
	viewer := Viewer{Class: "c9", ActiveProgram: ap2025, Entitlements: entitled(ap2026)}
	got := Resolve("https://shikho.com/qr?id=qrid_1", Records{chapterRecord()}, Quizzes{}, viewer)

	sw, ok := got.(RequireProgramSwitch)
	if !ok {
		t.Fatalf("expected RequireProgramSwitch, got %#v", got)
	}
	if sw.TargetProgram != ap2026 {
		t.Errorf("TargetProgram: want %q, got %q", ap2026, sw.TargetProgram)
	}
	if _, ok := sw.Pending.(ShowDestination); !ok {
		t.Errorf("Pending: want ShowDestination, got %#v", sw.Pending)
	}
}

func TestResolve_SwitchPrecedesPurchase(t *testing.T) {
	viewer := Viewer{Class: "c9", ActiveProgram: ap2025, Entitlements: Entitlements{}}
	got := Resolve("qr?id=qrid_1", Records{chapterRecord()}, Quizzes{}, viewer)

	sw, ok := got.(RequireProgramSwitch)
	if !ok {
		t.Fatalf("expected RequireProgramSwitch, got %#v", got)
	}
	want := RequirePurchase{RequiredProgram: ap2026}
	if !reflect.DeepEqual(sw.Pending, want) {
		t.Errorf("Pending: want %#v, got %#v", want, sw.Pending)
	}

	// Confirming the switch and resolving again lands on the paywall.
	viewer.ActiveProgram = sw.TargetProgram
	if got := Resolve("qr?id=qrid_1", Records{chapterRecord()}, Quizzes{}, viewer); !reflect.DeepEqual(got, want) {
		t.Errorf("after switch: want %#v, got %#v", want, got)
	}
}

func TestResolve_NotEntitled(t *testing.T) {
	viewer := Viewer{Class: "c9", ActiveProgram: ap2026, Entitlements: Entitlements{ap2026: AccessNone}}
	got := Resolve("qr?id=qrid_1", Records{chapterRecord()}, Quizzes{}, viewer)
	if want := (RequirePurchase{RequiredProgram: ap2026}); got != want {
		t.Fatalf("want %#v, got %#v", want, got)
	}
}

func TestResolve_Errors(t *testing.T) {
	viewer := Viewer{Class: "c9", ActiveProgram: ap2026, Entitlements: entitled(ap2026)}
	records := Records{
		chapterRecord(),
		QuizLinkRecord{ID: "qrid_quiz", QuizID: "quiz_gone"},
		MappedRecord{ID: "qrid_empty", Type: TypeChapter},
		MappedRecord{ID: "qrid_partial", Type: TypeChapter, Mappings: []Mapping{{
			ClassVal: "c9", Program: ap2026, Phase: "Quarter 1", Subject: "Physics", ChapterID: "ch1",
			FallbackProgram: ap2026, FallbackPhase: "Quarter 1",
		}}},
	}

	tests := []struct {
		name    string
		payload string
		want    ErrorKind
	}{
		{"no id", "https://shikho.com/qr", MalformedPayload},
		{"empty id", "https://shikho.com/qr?id=", MalformedPayload},
		{"other param", "https://shikho.com/qr?code=qrid_1", MalformedPayload},
		{"empty string", "", MalformedPayload},
		{"unknown id", "https://shikho.com/qr?id=qrid_404", RecordNotFound},
		{"id is case sensitive", "https://shikho.com/qr?id=QRID_1", RecordNotFound},
		{"quiz gone", "https://shikho.com/qr?id=qrid_quiz", LinkedQuizNotFound},
		{"no mappings", "https://shikho.com/qr?id=qrid_empty", InvalidMapping},
		{"partial fallback", "https://shikho.com/qr?id=qrid_partial", InvalidMapping},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.payload, records, Quizzes{}, viewer)
			re, ok := got.(ResolutionError)
			if !ok {
				t.Fatalf("expected ResolutionError, got %#v", got)
			}
			if re.Kind != tc.want {
				t.Errorf("Kind: want %q, got %q", tc.want, re.Kind)
			}
		})
	}
}

// TestResolve_FallbackIsAtomic checks that a not-ready mapping resolves from
// the fallback fields only, even though the ready fields are populated.
func TestResolve_FallbackIsAtomic(t *testing.T) {
	rec := chapterRecord()
	rec.Mappings[0].IsContentReady = false
	rec.Mappings[0].FallbackClassVal = "c9"
	rec.Mappings[0].FallbackProgram = ap2026
	rec.Mappings[0].FallbackPhase = "Quarter 2"
	rec.Mappings[0].FallbackSubject = "Chemistry"
	rec.Mappings[0].FallbackChapterID = "ch3"

	viewer := Viewer{Class: "c9", ActiveProgram: ap2026, Entitlements: entitled(ap2026)}
	got := Resolve("qr?id=qrid_1", Records{rec}, Quizzes{}, viewer)

	want := ShowDestination{Kind: TypeChapter, Program: ap2026, Phase: "Quarter 2", Subject: "Chemistry", ChapterID: "ch3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestResolve_UnmatchedClassUsesFirstMapping(t *testing.T) {
	rec := chapterRecord()
	rec.Mappings = append(rec.Mappings, Mapping{
		ClassVal: "c10", Program: ap2025, Phase: "Quarter 3", Subject: "Physics", ChapterID: "ch2", IsContentReady: true,
	})
	viewer := Viewer{Class: "c12", ActiveProgram: ap2026, Entitlements: entitled(ap2026, ap2025)}

	got, ok := Resolve("qr?id=qrid_1", Records{rec}, Quizzes{}, viewer).(ShowDestination)
	if !ok {
		t.Fatalf("expected ShowDestination")
	}
	if got.ChapterID != "ch1" || got.Phase != "Quarter 1" {
		t.Errorf("expected first mapping, got %#v", got)
	}

	viewer.Class = "c10"
	viewer.ActiveProgram = ap2025
	got, ok = Resolve("qr?id=qrid_1", Records{rec}, Quizzes{}, viewer).(ShowDestination)
	if !ok || got.ChapterID != "ch2" {
		t.Errorf("expected c10 mapping, got %#v", got)
	}
}

func TestResolve_AnimatedVideoIsNeverGated(t *testing.T) {
	rec := MappedRecord{ID: "qrid_av", Type: TypeAnimatedVideo, Mappings: []Mapping{{
		ClassVal: "c9", Subject: "Physics", ChapterID: "ch1", TopicID: "Topic 1", IsContentReady: true,
	}}}
	viewer := Viewer{Class: "c9", ActiveProgram: ap2025, Entitlements: Entitlements{}}

	got := Resolve("qr?id=qrid_av", Records{rec}, Quizzes{}, viewer)
	want := ShowDestination{Kind: TypeAnimatedVideo, Subject: "Physics", ChapterID: "ch1", TopicID: "Topic 1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestResolve_TypeSpecificIDs(t *testing.T) {
	base := Mapping{ClassVal: "c9", Program: ap2026, Phase: "Quarter 1", Subject: "Physics", ChapterID: "ch1", IsContentReady: true}
	lecture := base
	lecture.LectureClassID = "lc_7"
	exam := base
	exam.IsContentReady = false
	exam.LiveExamID = "le_ready"
	exam.FallbackProgram = ap2026
	exam.FallbackPhase = "Quarter 1"
	exam.FallbackSubject = "Physics"
	exam.FallbackChapterID = "ch2"
	exam.FallbackLiveExamID = "le_fallback"

	records := Records{
		MappedRecord{ID: "lc", Type: TypeLectureClass, Mappings: []Mapping{lecture}},
		MappedRecord{ID: "le", Type: TypeLiveExam, Mappings: []Mapping{exam}},
		MappedRecord{ID: "lc_bad", Type: TypeLectureClass, Mappings: []Mapping{base}},
	}
	viewer := Viewer{Class: "c9", ActiveProgram: ap2026, Entitlements: entitled(ap2026)}

	if got, _ := Resolve("qr?id=lc", records, Quizzes{}, viewer).(ShowDestination); got.LectureClassID != "lc_7" {
		t.Errorf("lecture class: got %#v", got)
	}
	if got, _ := Resolve("qr?id=le", records, Quizzes{}, viewer).(ShowDestination); got.LiveExamID != "le_fallback" || got.ChapterID != "ch2" {
		t.Errorf("live exam: got %#v", got)
	}
	if got, ok := Resolve("qr?id=lc_bad", records, Quizzes{}, viewer).(ResolutionError); !ok || got.Kind != InvalidMapping {
		t.Errorf("lecture class without id: got %#v", got)
	}
}

func TestResolve_Quiz(t *testing.T) {
	quizzes := Quizzes{
		{ID: "quiz_a", Program: ap2026, Phase: "Quarter 1", Subject: "Physics", ChapterID: "ch1"},
		{ID: "quiz_b", Program: ap2025, Phase: "Quarter 1", Subject: "Physics", ChapterID: "ch2"},
		{ID: "quiz_free", Subject: "Chemistry", ChapterID: "ch3"},
	}
	records := Records{
		QuizLinkRecord{ID: "qq", QuizID: "quiz_a", QuizMappings: []QuizMapping{
			{ClassVal: "c9", QuizID: "quiz_a"},
			{ClassVal: "c10", QuizID: "quiz_b"},
		}},
		QuizLinkRecord{ID: "qfree", QuizID: "quiz_free"},
	}

	viewer := Viewer{Class: "c9", ActiveProgram: ap2026, Entitlements: entitled(ap2026)}
	got, ok := Resolve("qr?id=qq", records, quizzes, viewer).(ShowDestination)
	if !ok || got.Kind != TypeQuiz || got.QuizID != "quiz_a" {
		t.Fatalf("c9 quiz: got %#v", got)
	}

	viewer.Class = "c10"
	sw, ok := Resolve("qr?id=qq", records, quizzes, viewer).(RequireProgramSwitch)
	if !ok || sw.TargetProgram != ap2025 {
		t.Fatalf("c10 quiz: expected switch to %q, got %#v", ap2025, sw)
	}
	if _, ok := sw.Pending.(RequirePurchase); !ok {
		t.Errorf("c10 quiz: pending should be a purchase prompt, got %#v", sw.Pending)
	}

	// A quiz with no program is gated against the viewer's own program.
	viewer.ActiveProgram = ap2026
	got, ok = Resolve("qr?id=qfree", records, quizzes, viewer).(ShowDestination)
	if !ok || got.QuizID != "quiz_free" || got.Program != ap2026 {
		t.Errorf("program-less quiz: got %#v", got)
	}
}

func TestResolve_Assistant(t *testing.T) {
	records := Records{AssistantRecord{ID: "ai", PromptText: "Explain inertia", ImageURL: "https://cdn/x.png"}}

	viewer := Viewer{Class: "c9", ActiveProgram: ap2026, Entitlements: entitled(ap2026)}
	got, ok := Resolve("qr?id=ai", records, Quizzes{}, viewer).(ShowDestination)
	if !ok || got.Kind != TypeShikhoAI || got.PromptText != "Explain inertia" {
		t.Fatalf("got %#v", got)
	}

	viewer.Entitlements = Entitlements{}
	if got := Resolve("qr?id=ai", records, Quizzes{}, viewer); got != (RequirePurchase{RequiredProgram: ap2026}) {
		t.Errorf("unentitled assistant: got %#v", got)
	}
}

func TestResolve_ReportCardIsGated(t *testing.T) {
	rec := chapterRecord()
	rec.Type = TypeReportCard
	viewer := Viewer{Class: "c9", ActiveProgram: ap2025, Entitlements: entitled(ap2025)}
	if _, ok := Resolve("qr?id=qrid_1", Records{rec}, Quizzes{}, viewer).(RequireProgramSwitch); !ok {
		t.Fatal("report card should ask for a program switch")
	}
}

func TestParseType_LegacyDefault(t *testing.T) {
	for _, s := range []string{"", "poster", "Chapter"} {
		if got := ParseType(s); got != TypeChapter {
			t.Errorf("ParseType(%q) = %q, want chapter", s, got)
		}
	}
	if got := ParseType("live_exam"); got != TypeLiveExam {
		t.Errorf("ParseType(live_exam) = %q", got)
	}
}
