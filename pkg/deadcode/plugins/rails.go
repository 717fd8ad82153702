package plugins

import (
	"strings"

	"github.com/panbanda/wraith/pkg/deadcode"
)

var railsDescriptor = deadcode.MustDescriptor(
	deadcode.IgnoreClassesInheritingFrom(
		"ApplicationController", "ActionController::Base", "ActionController::API",
		"ApplicationJob", "ActiveJob::Base",
		"ApplicationMailer", "ActionMailer::Base",
		"ApplicationCable::Channel", "ActionCable::Channel::Base",
	),
	deadcode.IgnoreMethodNames("/^(after|before|around)_\\w+_callback$/"),
)

var railsCallbacks = setOf(
	"before_action", "after_action", "around_action",
	"prepend_before_action", "prepend_after_action", "prepend_around_action",
	"append_before_action", "append_after_action", "append_around_action",
	"skip_before_action", "skip_after_action", "skip_around_action",
	"before_validation", "after_validation",
	"before_save", "around_save", "after_save",
	"before_create", "around_create", "after_create",
	"before_update", "around_update", "after_update",
	"before_destroy", "around_destroy", "after_destroy",
	"after_commit", "after_rollback", "after_initialize", "after_find", "after_touch",
	"after_create_commit", "after_update_commit", "after_destroy_commit", "after_save_commit",
	"before_enqueue", "after_enqueue", "around_enqueue",
	"before_perform", "after_perform", "around_perform",
	"validate", "helper_method", "rescue_from",
)

var (
	controllerBases = setOf("ApplicationController", "ActionController::Base", "ActionController::API")
	jobBases        = setOf("ApplicationJob", "ActiveJob::Base")
	mailerBases     = setOf("ApplicationMailer", "ActionMailer::Base")
	migrationHooks  = setOf("up", "down", "change")
)

// Rails covers methods invoked by the framework: controller actions, model
// and controller callbacks, job entry points, mailer actions and migrations.
type Rails struct {
	deadcode.Base
}

func NewRails() *Rails {
	return &Rails{Base: deadcode.NewBase("rails", railsDescriptor)}
}

func (p *Rails) OnDefineClass(ix deadcode.Indexer, d *deadcode.Definition) {
	p.Base.OnDefineClass(ix, d)
	if isMigration(d.Superclass()) {
		d.Ignore()
	}
}

func (p *Rails) OnDefineMethod(ix deadcode.Indexer, d *deadcode.Definition) {
	p.Base.OnDefineMethod(ix, d)
	if d.Kind() != deadcode.KindMethod {
		return
	}

	parent := sameFileSuperclass(ix, d.Owner())
	switch {
	case parent == "":
	case inheritsFrom(parent, controllerBases), inheritsFrom(parent, mailerBases):
		if d.Visibility() == deadcode.VisibilityPublic {
			d.Ignore()
		}
	case inheritsFrom(parent, jobBases):
		if d.Name() == "perform" {
			d.Ignore()
		}
	case isMigration(parent):
		if migrationHooks[d.Name()] {
			d.Ignore()
		}
	}
}

func (p *Rails) OnSend(ix deadcode.Indexer, s *deadcode.Send) {
	if railsCallbacks[s.Name] {
		referenceNames(ix, s)
	}

	if s.Name == "delegate" {
		referenceNames(ix, s)
		referenceKeyword(ix, s, "to")
	}

	referenceKeyword(ix, s, "if")
	referenceKeyword(ix, s, "unless")
}

func isMigration(superclass string) bool {
	return strings.HasPrefix(strings.TrimPrefix(superclass, "::"), "ActiveRecord::Migration")
}
