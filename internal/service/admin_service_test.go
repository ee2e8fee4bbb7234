package service

import (
	"context"
	"errors"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/util"
	"testing"
)

func newAdminFixture() (*AdminService, *fakeUserStore, *fakePersonalityStore, *fakeGateway) {
	users := newFakeUserStore()
	personalities := newFakePersonalityStore()
	gateway := &fakeGateway{}
	svc := NewAdminService(users, personalities, gateway)
	return svc, users, personalities, gateway
}

func seedPending(personalities *fakePersonalityStore) *model.AIPersonality {
	p := &model.AIPersonality{
		TeacherID:       1,
		PersonalityName: "Ms. Chen's AI Clone",
		SystemPrompt:    "You are Ms. Chen...",
		ApprovalStatus:  model.PersonalityPending,
	}
	personalities.Save(p)
	return p
}

func TestRejectRequiresFeedback(t *testing.T) {
	svc, _, personalities, _ := newAdminFixture()
	p := seedPending(personalities)

	_, err := svc.ReviewPersonality(p.ID, model.PersonalityRejected, "   ", "")
	if !errors.Is(err, util.ErrFeedbackRequired) {
		t.Fatalf("err = %v, want ErrFeedbackRequired", err)
	}

	// 空反馈视为取消，状态不变
	stored, _ := personalities.FindByID(p.ID)
	if stored.ApprovalStatus != model.PersonalityPending {
		t.Errorf("status = %v, empty feedback must leave state unchanged", stored.ApprovalStatus)
	}
}

func TestRejectStoresFeedback(t *testing.T) {
	svc, _, personalities, _ := newAdminFixture()
	p := seedPending(personalities)

	got, err := svc.ReviewPersonality(p.ID, model.PersonalityRejected, "The tone is too informal for our platform", "")
	if err != nil {
		t.Fatalf("ReviewPersonality failed: %v", err)
	}

	if got.ApprovalStatus != model.PersonalityRejected {
		t.Errorf("status = %v, want rejected", got.ApprovalStatus)
	}
	if got.AdminFeedback == nil || *got.AdminFeedback != "The tone is too informal for our platform" {
		t.Errorf("feedback = %v", got.AdminFeedback)
	}
	if got.IsActive {
		t.Error("rejected personality must be inactive")
	}
}

func TestApproveActivatesAndClearsFeedback(t *testing.T) {
	svc, _, personalities, _ := newAdminFixture()
	p := seedPending(personalities)

	if _, err := svc.ReviewPersonality(p.ID, model.PersonalityRejected, "too informal", ""); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	got, err := svc.ReviewPersonality(p.ID, model.PersonalityApproved, "", "")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if got.ApprovalStatus != model.PersonalityApproved {
		t.Errorf("status = %v, want approved", got.ApprovalStatus)
	}
	if !got.IsActive {
		t.Error("approval must activate the personality")
	}
	if got.AdminFeedback != nil {
		t.Errorf("feedback = %v, approval must clear it", *got.AdminFeedback)
	}
}

func TestApproveWithEditedPrompt(t *testing.T) {
	svc, _, personalities, _ := newAdminFixture()
	p := seedPending(personalities)

	got, err := svc.ReviewPersonality(p.ID, model.PersonalityApproved, "", "You are Ms. Chen, revised by admin.")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if got.SystemPrompt != "You are Ms. Chen, revised by admin." {
		t.Errorf("prompt = %q, edited prompt must win", got.SystemPrompt)
	}
}

func TestReviewInvalidStatus(t *testing.T) {
	svc, _, personalities, _ := newAdminFixture()
	p := seedPending(personalities)

	if _, err := svc.ReviewPersonality(p.ID, model.PersonalityPending, "", ""); !errors.Is(err, util.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestToggleActiveOnlyWhenApproved(t *testing.T) {
	svc, _, personalities, _ := newAdminFixture()
	p := seedPending(personalities)

	if _, err := svc.TogglePersonalityActive(p.ID, true); !errors.Is(err, util.ErrNotApproved) {
		t.Fatalf("err = %v, want ErrNotApproved for pending", err)
	}

	if _, err := svc.ReviewPersonality(p.ID, model.PersonalityApproved, "", ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	got, err := svc.TogglePersonalityActive(p.ID, false)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if got.IsActive {
		t.Error("toggle off did not deactivate")
	}
	if got.ApprovalStatus != model.PersonalityApproved {
		t.Errorf("status = %v, toggling must not change approval", got.ApprovalStatus)
	}
}

func TestUpdateTeacherStatus(t *testing.T) {
	svc, users, _, _ := newAdminFixture()

	teacher := &model.User{Name: "Mr. Khan", Role: model.Teacher, Status: model.AccountPending}
	users.Create(teacher)
	student := &model.User{Name: "Amy", Role: model.Student, Status: model.AccountApproved}
	users.Create(student)

	got, err := svc.UpdateTeacherStatus(teacher.ID, model.AccountApproved)
	if err != nil {
		t.Fatalf("UpdateTeacherStatus failed: %v", err)
	}
	if got.Status != model.AccountApproved {
		t.Errorf("status = %v, want approved", got.Status)
	}

	// 驳回后可复议通过
	if _, err := svc.UpdateTeacherStatus(teacher.ID, model.AccountRejected); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if _, err := svc.UpdateTeacherStatus(teacher.ID, model.AccountApproved); err != nil {
		t.Fatalf("re-approve failed: %v", err)
	}

	if _, err := svc.UpdateTeacherStatus(student.ID, model.AccountApproved); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied for non-teacher", err)
	}
	if _, err := svc.UpdateTeacherStatus(teacher.ID, model.AccountPending); !errors.Is(err, util.ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition for pending target", err)
	}
	if _, err := svc.UpdateTeacherStatus(999, model.AccountApproved); !errors.Is(err, util.ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestStats(t *testing.T) {
	svc, users, personalities, _ := newAdminFixture()

	users.Create(&model.User{Role: model.Teacher, Status: model.AccountPending})
	users.Create(&model.User{Role: model.Teacher, Status: model.AccountApproved})
	users.Create(&model.User{Role: model.Teacher, Status: model.AccountApproved})
	users.Create(&model.User{Role: model.Student, Status: model.AccountApproved})
	seedPending(personalities)

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.PendingTeachers != 1 || stats.ApprovedTeachers != 2 || stats.TotalStudents != 1 || stats.PendingPersonalities != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPersonalityTestChat(t *testing.T) {
	svc, _, _, gateway := newAdminFixture()
	gateway.textText = "**Sure!** Thanks for the click, fractions are parts of a whole."

	reply, err := svc.TestPersonalityChat(context.Background(), "You are Ms. Chen...", "What are fractions?")
	if err != nil {
		t.Fatalf("TestPersonalityChat failed: %v", err)
	}
	if reply != "Sure! fractions are parts of a whole." {
		t.Errorf("reply = %q, want sanitized output", reply)
	}

	gateway.textErr = errors.New("timeout")
	if _, err := svc.TestPersonalityChat(context.Background(), "prompt", "msg"); !errors.Is(err, util.ErrGatewayFailure) {
		t.Errorf("err = %v, want ErrGatewayFailure", err)
	}
}
