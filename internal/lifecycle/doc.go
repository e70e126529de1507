// Package lifecycle manages a locally deployed Java application server for
// functional tests: it unpacks the server distribution, installs the web
// application under test, starts the server through its own control scripts,
// waits for the application's status endpoint, and shuts the server down again.
//
// A typical cycle:
//
//	ctrl, err := lifecycle.NewController(desc)
//	if err != nil {
//		return err
//	}
//	if err := ctrl.CleanDeployDir(); err != nil {
//		return err
//	}
//	if err := ctrl.Deploy(ctx, "target/jaspi.war"); err != nil {
//		return err
//	}
//	if err := ctrl.Start(ctx, 8080); err != nil {
//		return err
//	}
//	defer ctrl.Stop(context.Background())
//
// Start first kills any process whose command line contains the configured
// process signature, because a leftover server would keep the port bound.
package lifecycle
