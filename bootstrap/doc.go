// Package bootstrap runs a command's components through a uniform
// lifecycle: validate config, start components, run hooks, then either
// block until a shutdown signal (Run) or execute a finite task (RunTask),
// and finally stop everything in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(srv)
//	err = app.Run(ctx)
package bootstrap
