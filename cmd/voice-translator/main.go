// Command voice-translator runs the translation API and its terminal tools.
package main

import "github.com/voicetranslatorpro/voice-translator-pro/internal/cli"

func main() {
	cli.Execute()
}
