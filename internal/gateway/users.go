package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/omergehad405/EduMaster/internal/identity"
	"github.com/omergehad405/EduMaster/internal/progression"
)

type authPayload struct {
	Token string   `json:"token"`
	User  wireUser `json:"user"`
}

// CurrentUser fetches the signed-in user's profile and progression.
func (c *Client) CurrentUser(ctx context.Context, token string) (identity.Profile, error) {
	var out struct {
		User wireUser `json:"user"`
	}
	err := c.do(ctx, call{
		op:     "get current user",
		method: http.MethodGet,
		path:   "/users/me",
		token:  token,
		auth:   true,
		schema: schemaMe,
	}, &out)
	if err != nil {
		return identity.Profile{}, err
	}
	return c.profile("get current user", out.User), nil
}

// Login exchanges credentials for a token and profile.
func (c *Client) Login(ctx context.Context, creds identity.Credentials) (identity.AuthResult, error) {
	var out authPayload
	err := c.do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   "/users/login",
		body: map[string]string{
			"email":    creds.Email,
			"password": creds.Password,
		},
		schema: schemaAuth,
	}, &out)
	if err != nil {
		return identity.AuthResult{}, err
	}
	return identity.AuthResult{Token: out.Token, Profile: c.profile("login", out.User)}, nil
}

// Register creates an account, uploading the optional avatar, and returns
// the new user's token and profile.
func (c *Client) Register(ctx context.Context, reg identity.Registration) (identity.AuthResult, error) {
	form := (&formBody{}).
		field("username", reg.Username).
		field("email", reg.Email).
		field("password", reg.Password)
	if reg.AvatarPath != "" {
		ct := ""
		if mt, err := mimetype.DetectFile(reg.AvatarPath); err == nil {
			ct = mt.String()
		}
		form.file("avatar", reg.AvatarPath, ct)
	}

	var out authPayload
	err := c.do(ctx, call{
		op:     "register",
		method: http.MethodPost,
		path:   "/users/register",
		form:   form,
		schema: schemaAuth,
	}, &out)
	if err != nil {
		return identity.AuthResult{}, err
	}
	return identity.AuthResult{Token: out.Token, Profile: c.profile("register", out.User)}, nil
}

// Enroll enrolls the user in a track and returns the authoritative
// enrollment list and progress records.
func (c *Client) Enroll(ctx context.Context, token, trackID string) (progression.Update, error) {
	var out struct {
		EnrolledTracks []refID         `json:"enrolledTracks"`
		Progress       *[]wireProgress `json:"progress"`
	}
	err := c.do(ctx, call{
		op:     "enroll",
		method: http.MethodPost,
		path:   "/users/enroll",
		token:  token,
		auth:   true,
		body:   map[string]string{"trackId": trackID},
		schema: schemaEnroll,
	}, &out)
	if err != nil {
		return progression.Update{}, err
	}
	u := progression.Update{
		Fields:   progression.FieldEnrolled,
		Enrolled: refIDs(out.EnrolledTracks),
	}
	if out.Progress != nil {
		u.Fields |= progression.FieldRecords
		u.Records = c.records("enroll", *out.Progress)
	}
	return u, nil
}

// EnterLesson tells the server the learner opened a lesson. It feeds the
// activity log only, so failures are logged and otherwise ignored.
func (c *Client) EnterLesson(ctx context.Context, token, lessonID string) {
	if token == "" || lessonID == "" {
		return
	}
	err := c.do(ctx, call{
		op:     "enter lesson",
		method: http.MethodPost,
		path:   "/users/enter-lesson",
		token:  token,
		auth:   true,
		body:   map[string]string{"lessonId": lessonID},
	}, nil)
	if err != nil {
		c.log.Debug("enter lesson", zap.String("lesson", lessonID), zap.Error(err))
	}
}

// CompleteLessonQuiz reports a passed lesson quiz. The server answers with
// the id of the lesson it unlocks next, which may be empty.
func (c *Client) CompleteLessonQuiz(ctx context.Context, token, lessonID, trackID string) (string, error) {
	var out struct {
		NextLessonID refID `json:"nextLessonId"`
	}
	err := c.do(ctx, call{
		op:     "complete lesson quiz",
		method: http.MethodPost,
		path:   "/users/complete-quiz",
		token:  token,
		auth:   true,
		body: map[string]string{
			"lessonId": lessonID,
			"trackId":  trackID,
		},
		schema: schemaCompleteQuiz,
	}, &out)
	if err != nil {
		return "", err
	}
	return string(out.NextLessonID), nil
}

// CompleteFinalQuiz reports a passed final quiz with the chosen option text
// per question index. It returns the authoritative completed tracks and
// progress records.
func (c *Client) CompleteFinalQuiz(ctx context.Context, token, trackID string, answers map[int]string) (progression.Update, error) {
	body := struct {
		TrackID string            `json:"trackId"`
		Answers map[string]string `json:"answers"`
	}{
		TrackID: trackID,
		Answers: make(map[string]string, len(answers)),
	}
	for i, a := range answers {
		body.Answers[strconv.Itoa(i)] = a
	}

	var out struct {
		CompletedTracks []refID         `json:"completedTracks"`
		Progress        *[]wireProgress `json:"progress"`
	}
	err := c.do(ctx, call{
		op:     "complete final quiz",
		method: http.MethodPost,
		path:   "/users/complete-final-quiz",
		token:  token,
		auth:   true,
		body:   body,
		schema: schemaFinalQuiz,
	}, &out)
	if err != nil {
		return progression.Update{}, err
	}
	u := progression.Update{
		Fields:    progression.FieldCompleted,
		Completed: refIDs(out.CompletedTracks),
	}
	if out.Progress != nil {
		u.Fields |= progression.FieldRecords
		u.Records = c.records("complete final quiz", *out.Progress)
	}
	return u, nil
}
