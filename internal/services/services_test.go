package services

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shikho/dynqr/internal/db"
	"github.com/shikho/dynqr/internal/events"
	"github.com/shikho/dynqr/internal/models"
	"github.com/shikho/dynqr/internal/qrimage"
	"github.com/shikho/dynqr/internal/records"
	"github.com/shikho/dynqr/internal/resolver"
)

// openTestDB returns an isolated in-file SQLite database in a temp directory.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

type fixture struct {
	qrs     *QRCodeService
	quizzes *QuizService
	viewers *ViewerService
	scans   *ScanService
}

func newFixture(t *testing.T) fixture {
	gdb := openTestDB(t)
	log := zerolog.Nop()
	viewers := NewViewerService(gdb, log)
	return fixture{
		qrs:     NewQRCodeService(gdb, log),
		quizzes: NewQuizService(gdb, log),
		viewers: viewers,
		scans:   NewScanService(gdb, log, viewers),
	}
}

func chapterInput(id string) records.QRInput {
	return records.QRInput{
		ID: id,
		Mappings: []records.MappingInput{
			{ClassVal: "c9", Program: "SSC - AP 2026", Phase: "Quarter 2", Subject: "Physics", ChapterID: "ch1", IsContentReady: true},
			{ClassVal: "c10", Program: "SSC - AP 2025", Phase: "Quarter 1", Subject: "Physics", ChapterID: "ch2",
				FallbackProgram: "SSC - AP 2025", FallbackPhase: "Quarter 1", FallbackChapterID: "ch1"},
		},
	}
}

func quizInput() records.QuizInput {
	return records.QuizInput{
		Name: "Motion basics", ClassVal: "c9", Program: "SSC - AP 2026",
		Phase: "Quarter 1", Subject: "Physics", ChapterID: "ch2",
		Questions: []records.QuestionInput{
			{ID: "q1", Number: "1", Options: map[string]string{"A": "1", "B": "2"}, Correct: "A"},
			{ID: "q2", Number: "2", Options: map[string]string{"A": "1", "B": "2"}, Correct: "B"},
			{ID: "q3", Number: "3", Options: map[string]string{"A": "1", "B": "2"}, Correct: "B"},
		},
	}
}

func TestQRCodeService_CreateGeneratesIDAndName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	qr, err := f.qrs.Create(ctx, chapterInput(""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(qr.ID) != len("qrid_")+9 || qr.ID[:5] != "qrid_" {
		t.Fatalf("unexpected id %q", qr.ID)
	}
	if qr.Name == "" || qr.Name[:5] != "[C9] " {
		t.Fatalf("unexpected default name %q", qr.Name)
	}
	if len(qr.Mappings) != 2 || qr.Mappings[1].ClassVal != "c10" {
		t.Fatalf("mappings not stored in order: %+v", qr.Mappings)
	}
	if records.Live(qr) {
		t.Fatal("record with a fallback mapping reported live")
	}
}

func TestQRCodeService_CreateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.qrs.Create(ctx, chapterInput("qrid_dup")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.qrs.Create(ctx, chapterInput("qrid_dup")); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestQRCodeService_UpdateReplacesMappings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.qrs.Create(ctx, chapterInput("qrid_upd"))
	if err != nil {
		t.Fatal(err)
	}

	in := chapterInput("ignored")
	in.Name = "Renamed"
	in.Mappings = in.Mappings[:1]
	qr, err := f.qrs.Update(ctx, "qrid_upd", in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if qr.ID != "qrid_upd" || qr.Name != "Renamed" || len(qr.Mappings) != 1 {
		t.Fatalf("unexpected record after update: %+v", qr)
	}
	if !qr.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed: %v → %v", created.CreatedAt, qr.CreatedAt)
	}

	if _, err := f.qrs.Update(ctx, "qrid_missing", in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQRCodeService_RejectsInvalidAndDanglingQuiz(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := chapterInput("qrid_bad")
	bad.Mappings[1].FallbackPhase = ""
	var ve *records.ValidationError
	if _, err := f.qrs.Create(ctx, bad); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}

	quizRec := records.QRInput{ID: "qrid_quiz", QRType: "quiz", QuizID: "quiz_nope"}
	if _, err := f.qrs.Create(ctx, quizRec); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for missing quiz, got %v", err)
	}
	if _, ok := ve.Fields["quizId"]; !ok {
		t.Fatalf("expected quizId field error, got %v", ve.Fields)
	}
}

func TestQRCodeService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.qrs.Create(ctx, chapterInput("qrid_del")); err != nil {
		t.Fatal(err)
	}
	if err := f.qrs.Delete(ctx, "qrid_del"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.qrs.Get(ctx, "qrid_del"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := f.qrs.Delete(ctx, "qrid_del"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestScan_ShowSwitchConfirmPurchase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.qrs.Create(ctx, chapterInput("qrid_scan")); err != nil {
		t.Fatal(err)
	}
	payload := resolver.BuildPayload("https://shikho.com", "qrid_scan")

	var seen []models.ScanEvent
	events.OnScan = func(ev models.ScanEvent) { seen = append(seen, ev) }
	t.Cleanup(func() { events.OnScan = nil })

	// New viewer: c9 on SSC - AP 2026 with no entitlements.
	res, err := f.scans.Scan(ctx, "v1", payload)
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := res.(resolver.RequirePurchase); !ok || p.RequiredProgram != "SSC - AP 2026" {
		t.Fatalf("expected purchase prompt, got %#v", res)
	}

	if _, err := f.viewers.SetEntitlements(ctx, "v1", []EntitlementInput{{Program: "SSC - AP 2026", Access: "full"}}); err != nil {
		t.Fatal(err)
	}
	res, err = f.scans.Scan(ctx, "v1", payload)
	if err != nil {
		t.Fatal(err)
	}
	if d, ok := res.(resolver.ShowDestination); !ok || d.Phase != "Quarter 2" || d.ChapterID != "ch1" {
		t.Fatalf("expected chapter destination, got %#v", res)
	}

	// Class 10 viewer lands on the fallback of the c10 mapping, in another program.
	if _, err := f.viewers.Update(ctx, "v1", ViewerInput{ClassVal: "c10"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.viewers.Update(ctx, "v1", ViewerInput{ActiveProgram: "SSC - AP 2026"}); err != nil {
		t.Fatal(err)
	}
	res, err = f.scans.Scan(ctx, "v1", payload)
	if err != nil {
		t.Fatal(err)
	}
	sw, ok := res.(resolver.RequireProgramSwitch)
	if !ok || sw.TargetProgram != "SSC - AP 2025" {
		t.Fatalf("expected switch prompt, got %#v", res)
	}

	if _, err := f.scans.ConfirmSwitch(ctx, "v1", payload, "SSC - AP 2026"); !errors.Is(err, ErrSwitchMismatch) {
		t.Fatalf("expected ErrSwitchMismatch, got %v", err)
	}
	res, err = f.scans.ConfirmSwitch(ctx, "v1", payload, "SSC - AP 2025")
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := res.(resolver.RequirePurchase); !ok || p.RequiredProgram != "SSC - AP 2025" {
		t.Fatalf("after switch expected purchase for new program, got %#v", res)
	}
	v, err := f.viewers.Get(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if v.ActiveProgram != "SSC - AP 2025" {
		t.Fatalf("active program: got %q", v.ActiveProgram)
	}

	evs, err := f.scans.RecentScans(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 4 || len(seen) != 4 {
		t.Fatalf("expected 4 recorded scans, got %d stored / %d hooked", len(evs), len(seen))
	}
	if evs[0].Outcome != string(resolver.OutcomePurchase) || evs[0].RecordID != "qrid_scan" {
		t.Fatalf("newest event: %+v", evs[0])
	}
}

func TestScan_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.scans.Scan(ctx, "v1", "https://shikho.com/qr?id=qrid_nothing")
	if err != nil {
		t.Fatal(err)
	}
	if e, ok := res.(resolver.ResolutionError); !ok || e.Kind != resolver.RecordNotFound {
		t.Fatalf("expected record_not_found, got %#v", res)
	}

	res, err = f.scans.Scan(ctx, "v1", "https://shikho.com/qr")
	if err != nil {
		t.Fatal(err)
	}
	if e, ok := res.(resolver.ResolutionError); !ok || e.Kind != resolver.MalformedPayload {
		t.Fatalf("expected malformed_payload, got %#v", res)
	}
}

func TestScan_DeletedQuizYieldsLinkedQuizNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	qz, err := f.quizzes.Create(ctx, quizInput())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.qrs.Create(ctx, records.QRInput{ID: "qrid_q", QRType: "quiz", QuizID: qz.ID}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.viewers.SetEntitlements(ctx, "v1", []EntitlementInput{{Program: "SSC - AP 2026", Access: "full"}}); err != nil {
		t.Fatal(err)
	}

	res, err := f.scans.Scan(ctx, "v1", "https://shikho.com/qr?id=qrid_q")
	if err != nil {
		t.Fatal(err)
	}
	if d, ok := res.(resolver.ShowDestination); !ok || d.QuizID != qz.ID {
		t.Fatalf("expected quiz destination, got %#v", res)
	}

	if err := f.quizzes.Delete(ctx, qz.ID); err != nil {
		t.Fatal(err)
	}
	res, err = f.scans.Scan(ctx, "v1", "https://shikho.com/qr?id=qrid_q")
	if err != nil {
		t.Fatal(err)
	}
	if e, ok := res.(resolver.ResolutionError); !ok || e.Kind != resolver.LinkedQuizNotFound {
		t.Fatalf("expected linked_quiz_not_found, got %#v", res)
	}
}

func TestScanImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.qrs.Create(ctx, chapterInput("qrid_img")); err != nil {
		t.Fatal(err)
	}

	png, err := qrimage.Encode(resolver.BuildPayload("https://shikho.com", "qrid_img"), 256)
	if err != nil {
		t.Fatal(err)
	}
	payload, res, err := f.scans.ScanImage(ctx, "v1", bytes.NewReader(png))
	if err != nil {
		t.Fatalf("scan image: %v", err)
	}
	if payload != "https://shikho.com/qr?id=qrid_img" {
		t.Fatalf("payload: got %q", payload)
	}
	if res.Outcome() != resolver.OutcomePurchase {
		t.Fatalf("expected purchase for unentitled viewer, got %#v", res)
	}

	if _, _, err := f.scans.ScanImage(ctx, "v1", bytes.NewReader([]byte("not an image"))); !errors.Is(err, ErrUnreadableImage) {
		t.Fatalf("expected ErrUnreadableImage, got %v", err)
	}
}

func TestQuizService_ReplaceQuestionsAndGrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	qz, err := f.quizzes.Create(ctx, quizInput())
	if err != nil {
		t.Fatal(err)
	}
	if len(qz.ID) != len("quiz_")+8 {
		t.Fatalf("unexpected quiz id %q", qz.ID)
	}
	if qz.ChapterName == "" || qz.ExamType != "MCQ" || qz.Status != "Active" {
		t.Fatalf("defaults not applied: %+v", qz)
	}

	g, err := f.quizzes.Grade(ctx, qz.ID, map[string]string{"q1": "a", "q2": "A", "zz": "B"})
	if err != nil {
		t.Fatal(err)
	}
	if g.Total != 3 || g.Answered != 2 || g.Correct != 1 {
		t.Fatalf("unexpected grade %+v", g)
	}

	qz, err = f.quizzes.ReplaceQuestions(ctx, qz.ID, []records.QuestionInput{
		{Number: "1", Options: map[string]string{"A": "x", "B": "y", "C": "z"}, Correct: "C"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(qz.Questions) != 1 || qz.Questions[0].ID == "" || qz.Questions[0].Correct != "C" {
		t.Fatalf("questions not replaced: %+v", qz.Questions)
	}

	var ve *records.ValidationError
	if _, err := f.quizzes.ReplaceQuestions(ctx, qz.ID, []records.QuestionInput{{Number: "1", Options: map[string]string{"A": "x"}, Correct: "E"}}); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.quizzes.Grade(ctx, "quiz_missing", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQuizService_QuestionIDsScopedToQuiz(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := quizInput()
	a.ID = "quiz_a"
	if _, err := f.quizzes.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	b := quizInput()
	b.ID = "quiz_b"
	b.Questions[0].Correct = "D"
	b.Questions[0].Options = map[string]string{"A": "1", "D": "4"}
	if _, err := f.quizzes.Create(ctx, b); err != nil {
		t.Fatal(err)
	}

	qa, err := f.quizzes.Get(ctx, "quiz_a")
	if err != nil {
		t.Fatal(err)
	}
	qb, err := f.quizzes.Get(ctx, "quiz_b")
	if err != nil {
		t.Fatal(err)
	}
	if len(qa.Questions) != 3 || len(qb.Questions) != 3 {
		t.Fatalf("questions: quiz_a=%d quiz_b=%d", len(qa.Questions), len(qb.Questions))
	}
	if qa.Questions[0].Correct != "A" || qb.Questions[0].Correct != "D" {
		t.Fatalf("q1 correct: quiz_a=%s quiz_b=%s", qa.Questions[0].Correct, qb.Questions[0].Correct)
	}

	// Replacing one quiz's questions leaves the other's alone.
	if _, err := f.quizzes.ReplaceQuestions(ctx, "quiz_b", []records.QuestionInput{
		{ID: "q1", Number: "1", Options: map[string]string{"A": "x", "B": "y"}, Correct: "B"},
	}); err != nil {
		t.Fatal(err)
	}
	g, err := f.quizzes.Grade(ctx, "quiz_a", map[string]string{"q1": "A"})
	if err != nil {
		t.Fatal(err)
	}
	if g.Total != 3 || g.Correct != 1 {
		t.Fatalf("quiz_a grade: %+v", g)
	}

	var ve *records.ValidationError
	_, err = f.quizzes.ReplaceQuestions(ctx, "quiz_a", []records.QuestionInput{
		{ID: "q9", Number: "1", Options: map[string]string{"A": "x"}, Correct: "A"},
		{ID: "q9", Number: "2", Options: map[string]string{"A": "x"}, Correct: "A"},
	})
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error for duplicate ids, got %v", err)
	}
	if _, ok := ve.Fields["questions"]; !ok {
		t.Fatalf("expected questions field error, got %v", ve.Fields)
	}
}

func TestScan_ConfirmWithoutPendingSwitchIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.qrs.Create(ctx, chapterInput("qrid_confirm")); err != nil {
		t.Fatal(err)
	}
	payload := resolver.BuildPayload("https://shikho.com", "qrid_confirm")

	// c9 viewers are already on the mapping's program, so no switch is pending.
	res, err := f.scans.ConfirmSwitch(ctx, "v2", payload, "SSC - AP 2026")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := res.(resolver.RequirePurchase); !ok {
		t.Fatalf("expected purchase prompt, got %#v", res)
	}
	evs, err := f.scans.RecentScans(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].ViewerID != "v2" || evs[0].RecordID != "qrid_confirm" {
		t.Fatalf("expected one recorded confirm, got %+v", evs)
	}
}

func TestViewerService_Defaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.viewers.Get(ctx, "fresh")
	if err != nil {
		t.Fatal(err)
	}
	if v.ClassVal != "c9" || v.ActiveProgram != "SSC - AP 2026" {
		t.Fatalf("unexpected defaults %+v", v)
	}

	v, err = f.viewers.Update(ctx, "fresh", ViewerInput{ClassVal: "c10"})
	if err != nil {
		t.Fatal(err)
	}
	if v.ActiveProgram != "SSC - AP 2025" {
		t.Fatalf("class change should move to the class default program, got %q", v.ActiveProgram)
	}

	var ve *records.ValidationError
	if _, err := f.viewers.Update(ctx, "fresh", ViewerInput{ClassVal: "c13"}); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}

	ent, err := f.viewers.SetEntitlements(ctx, "fresh", []EntitlementInput{{Program: "SSC - AP 2025", Access: "full"}})
	if err != nil {
		t.Fatal(err)
	}
	ent, err = f.viewers.SetEntitlements(ctx, "fresh", []EntitlementInput{{Program: "SSC - AP 2025", Access: "none"}})
	if err != nil {
		t.Fatal(err)
	}
	if ent.Full("SSC - AP 2025") || len(ent) != 1 {
		t.Fatalf("upsert failed: %v", ent)
	}
}
