package dat

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("daedalus.dat")
