// Package doxygen reads and writes the search-data tables Doxygen emits for
// its HTML search box (html/search/<category>_<n>.js):
//
//	var searchData=
//	[
//	  ['client_5fkill',['client_kill',['../classcpp__redis_1_1client.html#ae409',1,'cpp_redis::client']]],
//	  ...
//	];
//
// Each row carries a mangled id, the display name and one link per symbol
// ([url, local-flag, scope]). Rows are converted to index records: the
// display name becomes the key, the url is kept as an opaque anchor and the
// scope becomes the qualified name.
package doxygen
