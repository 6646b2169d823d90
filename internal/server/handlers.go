package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-enrollment/internal/logging"
	"github.com/goliatone/go-enrollment/internal/session"
	"github.com/goliatone/go-enrollment/pkg/flow"
	"github.com/goliatone/go-enrollment/pkg/pages"
	"github.com/goliatone/go-enrollment/pkg/renderers/html"
	"github.com/goliatone/go-enrollment/pkg/state"
)

// start begins or resumes the flow named by the slug.
func (s *Server) start(w http.ResponseWriter, r *http.Request) {
	f, ok := s.flow(w, r)
	if !ok {
		return
	}
	s.withSession(w, r, func(sess *session.Session) {
		res, err := s.controller.Start(r.Context(), f, sess.State)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		sess.State = res.State
		if !s.save(w, r, sess) {
			return
		}
		s.redirect(w, r, res.Next)
	})
}

// view renders a step, or redirects when the step does not apply.
func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	f, ok := s.flow(w, r)
	if !ok {
		return
	}
	stepID := mux.Vars(r)["step"]
	s.withSession(w, r, func(sess *session.Session) {
		expired := s.dropExpiredToken(r.Context(), sess)

		res, err := s.controller.View(r.Context(), f, stepID, sess.State, sess.CSRFToken)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		sess.State = res.State
		if (expired || res.Outcome == pages.OutcomeSkipped) && !s.save(w, r, sess) {
			return
		}
		if res.Outcome != pages.OutcomeRender {
			s.redirect(w, r, res.Next)
			return
		}
		if s.metrics != nil {
			s.metrics.RecordStepView(string(f.Name), stepID)
		}
		s.render(w, r, http.StatusOK, res.View)
	})
}

// submit validates and applies a step submission.
func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	f, ok := s.flow(w, r)
	if !ok {
		return
	}
	stepID := mux.Vars(r)["step"]
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.errorPage(w, r, http.StatusBadRequest, "We could not read that form", "Please go back and try again.")
		return
	}

	s.withSession(w, r, func(sess *session.Session) {
		if !validToken(sess.CSRFToken, r.PostForm.Get(CSRFField)) {
			s.logger.WithFields(logrus.Fields{"flow": f.Name, "step": stepID}).Warn("csrf token mismatch")
			s.errorPage(w, r, http.StatusForbidden, "Your session has expired", "Please start again from the first step.")
			return
		}
		s.dropExpiredToken(r.Context(), sess)

		wasCompleted := sess.State.Flow.Completed
		res, err := s.controller.Submit(r.Context(), f, stepID, sess.State, r.PostForm, sess.CSRFToken)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if s.metrics != nil {
			s.metrics.RecordStepSubmission(string(f.Name), stepID, string(res.Outcome))
		}

		sess.State = res.State
		if !s.save(w, r, sess) {
			return
		}

		switch res.Outcome {
		case pages.OutcomeInvalid:
			s.render(w, r, http.StatusUnprocessableEntity, res.View)
		case pages.OutcomeFailed:
			s.render(w, r, http.StatusBadGateway, res.View)
		default:
			if res.State.Flow.Completed && !wasCompleted {
				if s.metrics != nil {
					s.metrics.RecordFlowCompletion(string(f.Name))
				}
				logging.FromContext(r.Context(), s.logger).WithFields(logrus.Fields{
					"flow":      f.Name,
					"member_id": res.State.Flow.MemberID,
				}).Info("flow completed")
			}
			s.redirect(w, r, res.Next)
		}
	})
}

// back redirects to the step before the current one.
func (s *Server) back(w http.ResponseWriter, r *http.Request) {
	f, ok := s.flow(w, r)
	if !ok {
		return
	}
	s.withSession(w, r, func(sess *session.Session) {
		target, err := s.controller.Back(r.Context(), f, mux.Vars(r)["step"], sess.State)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.redirect(w, r, target)
	})
}

// reset clears the funnel state and lands on the start of the posted flow,
// or the home URL.
func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.errorPage(w, r, http.StatusBadRequest, "We could not read that form", "Please try again.")
		return
	}
	target := flow.Target{Path: s.homeURL, External: true}
	if slug := r.PostForm.Get("flow"); slug != "" {
		if f, err := s.controller.Flows().BySlug(slug); err == nil {
			target = flow.Target{Path: s.controller.Flows().BasePath() + "/" + f.Slug}
		}
	}

	s.withSession(w, r, func(sess *session.Session) {
		if !validToken(sess.CSRFToken, r.PostForm.Get(CSRFField)) {
			s.errorPage(w, r, http.StatusForbidden, "Your session has expired", "Please start again from the first step.")
			return
		}
		sess.State = state.NewStore(sess.State, state.Root).Dispatch(state.Reset())
		if !s.save(w, r, sess) {
			return
		}
		s.redirect(w, r, target)
	})
}

func (s *Server) flow(w http.ResponseWriter, r *http.Request) (*flow.Flow, bool) {
	f, err := s.controller.Flows().BySlug(mux.Vars(r)["slug"])
	if err != nil {
		s.notFound(w, r)
		return nil, false
	}
	return f, true
}

// dropExpiredToken forgets a member token that can no longer be used so
// auth-only steps send the member to login instead of failing upstream.
func (s *Server) dropExpiredToken(ctx context.Context, sess *session.Session) bool {
	token := sess.State.Flow.AuthToken
	if token == "" || s.checker.Usable(token) {
		return false
	}
	logging.FromContext(ctx, s.logger).WithField("session_id", sess.ID).Info("member token expired")
	sess.State = state.Root(sess.State, state.SetAuth(sess.State.Flow.MemberID, ""))
	return true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, view *pages.View) {
	if view == nil {
		s.fail(w, r, errors.New("server: controller returned no view"))
		return
	}
	out, err := s.renderer.Render(r.Context(), view.Form(), view.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, target flow.Target) {
	if target.Path == "" {
		s.fail(w, r, errors.New("server: empty redirect target"))
		return
	}
	http.Redirect(w, r, target.Path, http.StatusSeeOther)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, flow.ErrFlowNotFound) || errors.Is(err, flow.ErrStepNotFound) {
		s.notFound(w, r)
		return
	}
	logging.FromContext(r.Context(), s.logger).WithError(err).WithField("path", r.URL.Path).Error("request failed")
	s.internalError(w, r)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.errorPage(w, r, http.StatusNotFound, "Page not found", "We could not find that page.")
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.errorPage(w, r, http.StatusMethodNotAllowed, "Not allowed", "That action is not available here.")
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request) {
	s.errorPage(w, r, http.StatusInternalServerError, "Something went wrong", pages.GenericError)
}

func (s *Server) errorPage(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	home := s.homeURL
	if f, err := s.controller.Flows().BySlug(mux.Vars(r)["slug"]); err == nil {
		home = s.controller.Flows().BasePath() + "/" + f.Slug
	}
	out, err := s.renderer.RenderError(html.ErrorPage{Status: status, Title: title, Message: message, HomeURL: home})
	if err != nil {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func validToken(want, got string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
