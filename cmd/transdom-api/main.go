package main

func main() {
	app := mustBootstrapAPI()
	defer app.Close()

	if err := app.Run(); err != nil && !isShutdown(err) {
		panic(err)
	}
}
