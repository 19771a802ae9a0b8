// Package color wraps fatih/color for the tsctl CLI.
package color

import (
	"github.com/fatih/color"
)

func Green(s string) string {
	c := color.New(color.FgHiGreen)
	c.EnableColor()
	return c.SprintFunc()(s)
}

func Red(s string) string {
	c := color.New(color.FgHiRed)
	c.EnableColor()
	return c.SprintFunc()(s)
}

func Yellow(s string) string {
	c := color.New(color.FgHiYellow)
	c.EnableColor()
	return c.SprintFunc()(s)
}

func Cyan(s string) string {
	c := color.New(color.FgHiCyan)
	c.EnableColor()
	return c.SprintFunc()(s)
}
