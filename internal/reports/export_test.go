package reports

// VlanString is exposed to the external test package.
var VlanString = vlanString
