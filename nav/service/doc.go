// Package service provides the business logic layer between transports and
// the navigation engine.
//
// The service package implements:
//   - One-shot turtle walks (final distance, first revisited cell)
//   - One-shot keypad codes over named layouts
//   - Walk sessions advanced one instruction at a time
//   - Keypad layout listing and storage
//
// Core Interfaces:
//
// NavService is the main service interface used by the REST API, the MCP
// tools and the CLI. SessionManager stores live sessions. ConfigManager loads
// keypad layouts.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	navService := service.NewNavService(sessionMgr, configMgr)
//
//	result, err := navService.WalkTurtle(ctx, "R8, R4, R4, R8")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Distance, *result.RevisitDistance)
//
// Sessions:
//
// A session is either a turtle walk on the unbounded plane or a keypad walk
// over one layout. Each Apply call feeds a single instruction and returns the
// coordinates visited on the way, which the API streams to websocket clients.
package service
