package frontend

import (
	"context"
	"errors"
	"fmt"
	"log"

	"timed-quiz-platform/internal/client"
	"timed-quiz-platform/internal/domain"
)

// DeleteKind names what a pending delete removes.
type DeleteKind string

const (
	DeleteChannel  DeleteKind = "channel"
	DeleteQuestion DeleteKind = "question"
	DeleteUser     DeleteKind = "user"
	DeleteResults  DeleteKind = "results"
)

// DeleteTarget is a delete waiting for its confirmation text.
type DeleteTarget struct {
	Kind DeleteKind
	ID   int64
	Name string
}

func (v *View) AdminLogin(ctx context.Context, username, password string) error {
	if err := v.api.Login(ctx, username, password); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			v.notify.Error(msgBadCredentials)
		} else {
			v.notify.Error(msgLoginFailed)
		}
		return err
	}
	v.mu.Lock()
	v.admin = username
	v.mode = ModeAdminDashboard
	v.mu.Unlock()
	v.notify.Success(msgWelcome)
	return nil
}

// SignOut forgets the admin session and every loaded list.
func (v *View) SignOut() {
	v.api.Logout()
	v.mu.Lock()
	defer v.mu.Unlock()
	v.admin = ""
	v.mode = ModeHome
	v.pendingDelete = nil
	v.createdCode = ""
	v.channels = nil
	v.questions = nil
	v.results = nil
	v.admins = nil
}

func (v *View) AdminName() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.admin
}

func (v *View) Channels() []domain.Channel {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.channels
}

func (v *View) Questions() []domain.Question {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.questions
}

func (v *View) Results() []domain.ResultSummary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.results
}

func (v *View) Admins() []domain.AdminAccount {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.admins
}

// CreatedCode is the code of the channel created last on the create screen.
func (v *View) CreatedCode() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.createdCode
}

// OpenCreateChannel shows the create-channel screen with the current list.
func (v *View) OpenCreateChannel(ctx context.Context) {
	v.Show(ModeCreateChannel)
	channels, err := v.api.ListChannels(ctx)
	if err != nil {
		log.Printf("load channels: %v", err)
		return
	}
	v.mu.Lock()
	v.channels = channels
	v.mu.Unlock()
}

func (v *View) CreateChannel(ctx context.Context, name string) (domain.Channel, error) {
	ch, err := v.api.CreateChannel(ctx, client.ChannelInput{Name: name})
	if err != nil {
		switch {
		case errors.Is(err, client.ErrConflict):
			v.notify.Error(msgChannelExists)
		case errors.Is(err, client.ErrInvalid):
			v.notify.Error(msgChannelInvalid)
		default:
			v.notify.Error(msgChannelFailed)
		}
		return domain.Channel{}, err
	}
	v.mu.Lock()
	v.createdCode = ch.Code
	v.mu.Unlock()
	v.notify.Success(fmt.Sprintf(msgChannelCreated, ch.Code))

	if channels, err := v.api.ListChannels(ctx); err == nil {
		v.mu.Lock()
		v.channels = channels
		v.mu.Unlock()
	} else {
		log.Printf("reload channels: %v", err)
	}
	return ch, nil
}

func (v *View) LoadChannels(ctx context.Context) error {
	channels, err := v.api.ListChannels(ctx)
	if err != nil {
		v.notify.Error(msgChannelsFailed)
		return err
	}
	v.mu.Lock()
	v.channels = channels
	v.mode = ModeManageChannels
	v.mu.Unlock()
	return nil
}

func (v *View) AddQuestion(ctx context.Context, in client.QuestionInput) (domain.Question, error) {
	q, err := v.api.AddQuestion(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, client.ErrConflict):
			v.notify.Error(msgQuestionExists)
		case errors.Is(err, client.ErrInvalid):
			v.notify.Error(msgQuestionInvalid)
		default:
			v.notify.Error(msgQuestionFailed)
		}
		return domain.Question{}, err
	}
	v.notify.Success(msgQuestionAdded)
	return q, nil
}

func (v *View) LoadQuestions(ctx context.Context) error {
	questions, err := v.api.ListQuestions(ctx)
	if err != nil {
		v.notify.Error(msgQuestionsFailed)
		return err
	}
	v.mu.Lock()
	v.questions = questions
	v.mode = ModeViewQuestions
	v.mu.Unlock()
	return nil
}

func (v *View) UpdateQuestion(ctx context.Context, id int64, in client.QuestionInput) error {
	if _, err := v.api.UpdateQuestion(ctx, id, in); err != nil {
		switch {
		case errors.Is(err, client.ErrConflict):
			v.notify.Error(msgTextTaken)
		case errors.Is(err, client.ErrNotFound):
			v.notify.Error(msgQuestionGone)
		default:
			v.notify.Error(msgUpdateFailed)
		}
		return err
	}
	v.notify.Success(msgQuestionUpdated)
	return v.LoadQuestions(ctx)
}

func (v *View) LoadResults(ctx context.Context) error {
	results, err := v.api.Results(ctx)
	if err != nil {
		v.notify.Error(msgResultsFailed)
		return err
	}
	v.mu.Lock()
	v.results = results
	v.mode = ModeViewResults
	v.mu.Unlock()
	return nil
}

func (v *View) LoadUsers(ctx context.Context) error {
	admins, err := v.api.ListAdmins(ctx)
	if err != nil {
		v.notify.Error(msgUsersFailed)
		return err
	}
	v.mu.Lock()
	v.admins = admins
	v.mode = ModeManageUsers
	v.mu.Unlock()
	return nil
}

func (v *View) CreateAdminUser(ctx context.Context, username, password string) error {
	if _, err := v.api.CreateAdmin(ctx, client.AdminInput{Username: username, Password: password}); err != nil {
		if errors.Is(err, client.ErrConflict) {
			v.notify.Error(msgUserExists)
		} else {
			v.notify.Error(msgUserFailed)
		}
		return err
	}
	v.notify.Success(msgUserCreated)
	return v.LoadUsers(ctx)
}

// ChangePassword changes the signed-in admin's own password.
func (v *View) ChangePassword(ctx context.Context, current, next string) error {
	err := v.api.ChangePassword(ctx, v.AdminName(), client.PasswordInput{CurrentPassword: current, NewPassword: next})
	if err != nil {
		if errors.Is(err, client.ErrInvalid) {
			v.notify.Error(msgWrongPassword)
		} else {
			v.notify.Error(msgPasswordFailed)
		}
		return err
	}
	v.notify.Success(msgPasswordUpdated)
	return nil
}

// RequestDelete opens the delete confirmation for target.
func (v *View) RequestDelete(target DeleteTarget) {
	v.mu.Lock()
	v.pendingDelete = &target
	v.mu.Unlock()
}

func (v *View) PendingDelete() (DeleteTarget, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pendingDelete == nil {
		return DeleteTarget{}, false
	}
	return *v.pendingDelete, true
}

func (v *View) CancelDelete() {
	v.mu.Lock()
	v.pendingDelete = nil
	v.mu.Unlock()
}

// ConfirmDelete performs the pending delete when text is the literal DELETE,
// then reloads the affected list. A failed delete stays pending.
func (v *View) ConfirmDelete(ctx context.Context, text string) error {
	if !DeleteEnabled(text) {
		return ErrNotConfirmed
	}
	target, ok := v.PendingDelete()
	if !ok {
		return ErrNothingPending
	}

	var err error
	switch target.Kind {
	case DeleteChannel:
		err = v.api.DeleteChannel(ctx, target.ID)
	case DeleteQuestion:
		err = v.api.DeleteQuestion(ctx, target.ID)
	case DeleteUser:
		err = v.api.DeleteAdmin(ctx, target.ID)
	case DeleteResults:
		err = v.api.ClearResults(ctx)
	default:
		err = fmt.Errorf("unknown delete kind %q", target.Kind)
	}
	if err != nil {
		v.notify.Error(msgDeleteFailed)
		return err
	}

	v.CancelDelete()
	switch target.Kind {
	case DeleteChannel:
		v.notify.Success(msgChannelDeleted)
		return v.LoadChannels(ctx)
	case DeleteQuestion:
		v.notify.Success(msgQuestionDeleted)
		return v.LoadQuestions(ctx)
	case DeleteUser:
		v.notify.Success(msgUserDeleted)
		return v.LoadUsers(ctx)
	default:
		v.notify.Success(msgResultsCleared)
		v.mu.Lock()
		v.results = nil
		v.mode = ModeAdminDashboard
		v.mu.Unlock()
		return nil
	}
}
