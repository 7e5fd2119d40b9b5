package quarryapp

import (
	appbase "github.com/quarrytools/quarry/app/base"
	_ "github.com/quarrytools/quarry/app/dependencies"
	_ "github.com/quarrytools/quarry/app/find"
	_ "github.com/quarrytools/quarry/app/install"
	_ "github.com/quarrytools/quarry/app/uninstall"
)

var App = appbase.App
