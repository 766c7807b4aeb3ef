// Code generated by dependgen — DO NOT EDIT.
package blelog_test

import "github.com/srgg/testify/depend"

var LogTestSuiteTestRegistry = map[string]func(any){
	"TestColdUntilStarted": func(s any) { s.(*LogTestSuite).TestColdUntilStarted() },
	"TestDefaultFlags": func(s any) { s.(*LogTestSuite).TestDefaultFlags() },
	"TestAdapterStatusIffRequested": func(s any) { s.(*LogTestSuite).TestAdapterStatusIffRequested() },
	"TestAdapterLevelMessages": func(s any) { s.(*LogTestSuite).TestAdapterLevelMessages() },
	"TestDeviceStatusEvents": func(s any) { s.(*LogTestSuite).TestDeviceStatusEvents() },
	"TestRegistrationRunsWithoutDeviceStatusFlag": func(s any) { s.(*LogTestSuite).TestRegistrationRunsWithoutDeviceStatusFlag() },
	"TestNestedTapsFollowFlags": func(s any) { s.(*LogTestSuite).TestNestedTapsFollowFlags() },
	"TestDiscoveryTapsWithoutFlags": func(s any) { s.(*LogTestSuite).TestDiscoveryTapsWithoutFlags() },
	"TestReconnectDoesNotDuplicateTaps": func(s any) { s.(*LogTestSuite).TestReconnectDoesNotDuplicateTaps() },
	"TestBackToBackConnects": func(s any) { s.(*LogTestSuite).TestBackToBackConnects() },
	"TestConcurrentDevices": func(s any) { s.(*LogTestSuite).TestConcurrentDevices() },
	"TestUnregisteredNonConnectedIsNoop": func(s any) { s.(*LogTestSuite).TestUnregisteredNonConnectedIsNoop() },
	"TestReleaseTearsDownEverything": func(s any) { s.(*LogTestSuite).TestReleaseTearsDownEverything() },
	"TestLateTapAfterDisconnectIsReleased": func(s any) { s.(*LogTestSuite).TestLateTapAfterDisconnectIsReleased() },
	"TestUpstreamErrorsPassThrough": func(s any) { s.(*LogTestSuite).TestUpstreamErrorsPassThrough() },
	"TestIndependentSessions": func(s any) { s.(*LogTestSuite).TestIndependentSessions() },
}

var LogTestSuiteTestOrder = []string{
	"TestColdUntilStarted",
	"TestDefaultFlags",
	"TestAdapterStatusIffRequested",
	"TestAdapterLevelMessages",
	"TestDeviceStatusEvents",
	"TestRegistrationRunsWithoutDeviceStatusFlag",
	"TestNestedTapsFollowFlags",
	"TestDiscoveryTapsWithoutFlags",
	"TestReconnectDoesNotDuplicateTaps",
	"TestBackToBackConnects",
	"TestConcurrentDevices",
	"TestUnregisteredNonConnectedIsNoop",
	"TestReleaseTearsDownEverything",
	"TestLateTapAfterDisconnectIsReleased",
	"TestUpstreamErrorsPassThrough",
	"TestIndependentSessions",
}

var LogTestSuiteDependencies = depend.Depends(func(s any) *depend.Dep {
	dep := new(depend.Dep)
	dep.On("TestDiscoveryTapsWithoutFlags", "TestNestedTapsFollowFlags")
	dep.On("TestReconnectDoesNotDuplicateTaps", "TestNestedTapsFollowFlags")
	dep.On("TestBackToBackConnects", "TestReconnectDoesNotDuplicateTaps")
	dep.On("TestReleaseTearsDownEverything", "TestNestedTapsFollowFlags")
	dep.On("TestLateTapAfterDisconnectIsReleased", "TestReleaseTearsDownEverything")
	return dep
})

// GeneratedDependConfig returns the dependency configuration for LogTestSuite.
// This method allows LogTestSuite to be used with depend.RunSuite(t, suite).
// DO NOT implement this method manually - it is auto-generated.
func (s *LogTestSuite) GeneratedDependConfig() *depend.SuiteConfig {
	return &depend.SuiteConfig{
		Registry: LogTestSuiteTestRegistry,
		Order:    LogTestSuiteTestOrder,
		Deps:     LogTestSuiteDependencies,
	}
}
