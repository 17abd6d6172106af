package churchsite

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/towngreen/churchsite/api"
	"github.com/towngreen/churchsite/content"
	"github.com/towngreen/churchsite/views"
)

// newFormValidator reports field errors under their form names.
func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// fieldMessage turns a failed rule into a sentence a visitor can act on.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Please enter a valid email address."
	case "max":
		return "Please keep this under " + fe.Param() + " characters."
	case "oneof":
		return "Please choose one of: " + strings.ReplaceAll(fe.Param(), " ", ", ") + "."
	case "url":
		return "Please enter a full link starting with https://."
	default:
		return "This value is not valid."
	}
}

// formErrors validates v, keyed by form field name.
func (a *App) formErrors(v any) map[string]string {
	err := a.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return map[string]string{"form": err.Error()}
	}
	out := make(map[string]string, len(fes))
	for _, fe := range fes {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

// publicForm is a visitor submission bound from a form post.
type publicForm interface {
	normalize()
	values() map[string]string
}

type prayerForm struct {
	RequesterName string `form:"requester_name" validate:"max=120"`
	Email         string `form:"email" validate:"omitempty,email"`
	Phone         string `form:"phone" validate:"max=40"`
	RequestText   string `form:"request_text" validate:"required,max=4000"`
	IsAnonymous   bool   `form:"is_anonymous"`
}

func (f *prayerForm) normalize() {
	trimAll(&f.RequesterName, &f.Email, &f.Phone, &f.RequestText)
}

func (f *prayerForm) values() map[string]string {
	anon := ""
	if f.IsAnonymous {
		anon = "true"
	}
	return map[string]string{
		"requester_name": f.RequesterName,
		"email":          f.Email,
		"phone":          f.Phone,
		"request_text":   f.RequestText,
		"is_anonymous":   anon,
	}
}

type contactForm struct {
	Name    string `form:"name" validate:"required,max=120"`
	Email   string `form:"email" validate:"required,email"`
	Subject string `form:"subject" validate:"max=200"`
	Message string `form:"message" validate:"required,max=4000"`
}

func (f *contactForm) normalize() { trimAll(&f.Name, &f.Email, &f.Subject, &f.Message) }

func (f *contactForm) values() map[string]string {
	return map[string]string{"name": f.Name, "email": f.Email, "subject": f.Subject, "message": f.Message}
}

type membershipForm struct {
	FullName string `form:"full_name" validate:"required,max=160"`
	Sex      string `form:"sex" validate:"required,oneof=male female"`
	Address  string `form:"address" validate:"required,max=300"`
	Phone    string `form:"phone" validate:"required,max=40"`
	Email    string `form:"email" validate:"omitempty,email"`
}

func (f *membershipForm) normalize() {
	trimAll(&f.FullName, &f.Sex, &f.Address, &f.Phone, &f.Email)
	f.Sex = strings.ToLower(f.Sex)
}

func (f *membershipForm) values() map[string]string {
	return map[string]string{
		"full_name": f.FullName,
		"sex":       f.Sex,
		"address":   f.Address,
		"phone":     f.Phone,
		"email":     f.Email,
	}
}

type testimonyForm struct {
	Quote  string `form:"quote" validate:"required,max=2000"`
	Author string `form:"author" validate:"required,max=120"`
	Role   string `form:"role" validate:"max=120"`
}

func (f *testimonyForm) normalize() { trimAll(&f.Quote, &f.Author, &f.Role) }

func (f *testimonyForm) values() map[string]string {
	return map[string]string{"quote": f.Quote, "author": f.Author, "role": f.Role}
}

func trimAll(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}

// submission describes one public form: where it lives and how it is sent.
type submission struct {
	form     publicForm
	path     string
	nav      string
	title    string
	manifest content.Manifest
	render   func(views.Public) templ.Component
	sent     string
	send     func(context.Context) error
}

// submit binds, validates and sends a public form. htmx posts get the result
// fragment back; plain posts are redirected on success and re-rendered with
// the errors otherwise.
func (a *App) submit(c echo.Context, s submission) error {
	if err := c.Bind(s.form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	s.form.normalize()

	form := views.Form{Values: s.form.values()}
	var banner content.Notice
	status := http.StatusOK

	if errs := a.formErrors(s.form); len(errs) > 0 {
		form.Errors = errs
		banner = content.Warning("Please correct the highlighted fields.")
		status = http.StatusUnprocessableEntity
	} else if !a.submitLimiter.Allow(c.RealIP()) {
		banner = content.Warning("Too many submissions. Please try again later.")
		status = http.StatusTooManyRequests
	} else if err := s.send(c.Request().Context()); err != nil {
		a.logger.Warn("form submission failed", "path", s.path, "err", err)
		banner = content.Failure("Failed to submit", err)
		status = http.StatusBadGateway
	} else {
		if !isHTMX(c) {
			return c.Redirect(http.StatusSeeOther, s.path+"?sent=1")
		}
		toast(c, content.Success(s.sent))
		form = views.Form{Sent: true}
		banner = content.Success(s.sent)
	}

	if isHTMX(c) {
		// htmx leaves error statuses unswapped.
		return Render(c, views.FormResult(views.Public{Form: form, Banner: banner}))
	}
	d := a.publicPage(c, s.nav, s.title, s.manifest)
	d.Form = form
	d.Banner = banner
	return RenderStatus(c, status, s.render(d))
}

func (a *App) handlePrayerSubmit(c echo.Context) error {
	f := &prayerForm{}
	return a.submit(c, submission{
		form: f, path: "/prayers/", nav: "prayers", title: "Prayer Requests",
		manifest: PrayersManifest, render: views.Prayers,
		sent: "Your prayer request has been received. We are praying with you.",
		send: func(ctx context.Context) error {
			_, err := a.API.Prayers().Create(ctx, api.PrayerRequest{
				RequesterName: f.RequesterName,
				RequestText:   f.RequestText,
				IsAnonymous:   f.IsAnonymous,
				Email:         f.Email,
				Phone:         f.Phone,
			})
			return err
		},
	})
}

func (a *App) handleContactSubmit(c echo.Context) error {
	f := &contactForm{}
	return a.submit(c, submission{
		form: f, path: "/contact/", nav: "contact", title: "Contact",
		manifest: ContactManifest, render: views.Contact,
		sent: "Thank you for your message! We will get back to you soon.",
		send: func(ctx context.Context) error {
			_, err := a.API.Contact().Create(ctx, api.ContactMessage{
				Name:    f.Name,
				Email:   f.Email,
				Subject: f.Subject,
				Message: f.Message,
			})
			return err
		},
	})
}

func (a *App) handleMembershipSubmit(c echo.Context) error {
	f := &membershipForm{}
	return a.submit(c, submission{
		form: f, path: "/membership/", nav: "membership", title: "Membership",
		manifest: HomeManifest, render: views.Membership,
		sent: "Your membership application has been submitted successfully!",
		send: func(ctx context.Context) error {
			return a.API.Memberships().Submit(ctx, api.MembershipApplication{
				FullName: f.FullName,
				Sex:      f.Sex,
				Address:  f.Address,
				Phone:    f.Phone,
				Email:    f.Email,
			})
		},
	})
}

func (a *App) handleTestimonySubmit(c echo.Context) error {
	f := &testimonyForm{}
	return a.submit(c, submission{
		form: f, path: "/testimonies/", nav: "testimonies", title: "Testimonies",
		manifest: TestimoniesManifest, render: views.Testimonies,
		sent: "Thank you for sharing! Your testimony will appear once it has been reviewed.",
		send: func(ctx context.Context) error {
			_, err := a.API.Testimonies().Create(ctx, api.TestimonyRecord{
				Quote:  f.Quote,
				Author: f.Author,
				Role:   f.Role,
			})
			return err
		},
	})
}
