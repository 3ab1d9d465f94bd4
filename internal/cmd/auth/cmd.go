package auth

// Cmd groups the commands that run a flow. They are mounted at the top level.
type Cmd struct {
	Login     LoginCmd     `cmd:"" help:"Authorize in the browser and exchange the code in one step."`
	Authorize AuthorizeCmd `cmd:"" help:"Start a flow and print the authorization URL."`
	Exchange  ExchangeCmd  `cmd:"" help:"Finish a flow started with authorize."`
	Flows     FlowsCmd     `cmd:"" help:"List or prune pending flows."`
}
