package autoload

// Import all middleware subpackages for side-effect registration.
import (
	_ "clima/middlewares/greeting"
	_ "clima/middlewares/help"
	_ "clima/middlewares/inputlimit"
	_ "clima/middlewares/textcleaner"
)
