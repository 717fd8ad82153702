package plugins

import "github.com/panbanda/wraith/pkg/deadcode"

var minitestDescriptor = deadcode.MustDescriptor(
	deadcode.IgnoreMethodNames(
		"/^test_/",
		"setup", "teardown", "before_setup", "after_setup", "before_teardown", "after_teardown",
	),
	deadcode.IgnoreClassesInheritingFrom(
		"Minitest::Test", "MiniTest::Test", "Minitest::Spec",
		"ActiveSupport::TestCase", "ActionDispatch::IntegrationTest",
		"ActionController::TestCase", "ActionMailer::TestCase", "ActionView::TestCase",
		"Test::Unit::TestCase",
	),
)

// Minitest covers test methods and lifecycle hooks the runner discovers by name.
type Minitest struct {
	deadcode.Base
}

func NewMinitest() *Minitest {
	return &Minitest{Base: deadcode.NewBase("minitest", minitestDescriptor)}
}
