package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/hydernasirr/aws-finops-2/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
         /$$$$$$$$ /$$            /$$$$$$                                /$$$$$$                                 /$$
        | $$_____/|__/           /$$__  $$                              /$$__  $$                               | $$
        | $$       /$$ /$$$$$$$ | $$  \ $$  /$$$$$$   /$$$$$$$        | $$  \ $$  /$$$$$$   /$$$$$$  /$$$$$$$  /$$$$$$
        | $$$$$   | $$| $$__  $$| $$  | $$ /$$__  $$ /$$_____/        | $$$$$$$$ /$$__  $$ /$$__  $$| $$__  $$|_  $$_/
        | $$__/   | $$| $$  \ $$| $$  | $$| $$  \ $$|  $$$$$$         | $$__  $$| $$  \ $$| $$$$$$$$| $$  \ $$  | $$
        | $$      | $$| $$  | $$| $$  | $$| $$  | $$ \____  $$        | $$  | $$| $$  | $$| $$_____/| $$  | $$  | $$ /$$
        | $$      | $$| $$  | $$|  $$$$$$/| $$$$$$$/ /$$$$$$$/        | $$  | $$|  $$$$$$$|  $$$$$$$| $$  | $$  |  $$$$/
        |__/      |__/|__/  |__/ \______/ | $$____/ |_______/         |__/  |__/ \____  $$ \_______/|__/  |__/   \___/
                                          | $$                                   /$$  \ $$
                                          | $$                                  |  $$$$$$/
                                          |__/                                   \______/
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))
	fmt.Println(blue(fmt.Sprintf("AWS FinOps Agent (v%s)", version.FormatVersion())))
}
