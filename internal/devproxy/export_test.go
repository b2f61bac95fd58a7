package devproxy

var Matches = matches
