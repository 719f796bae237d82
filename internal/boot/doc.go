/*
Package boot reads the hydration payload a renderer starts from.

The host embeds the payload as URL-encoded JSON in an element with id
"data":

	<textarea id="data" hidden>%7B%22host%22%3A%22node%22%7D</textarea>

Fields are optional: host ("browser" or "node"), view ("SplashScreen" or
"PageDetail") and project (a project snapshot). Every failure degrades to
defaults so a renderer always boots.
*/
package boot
